package mail

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestDispatcherNotify(t *testing.T) {
	sender := &MockSender{}
	d := NewDispatcher(sender, nil)

	d.Notify(context.Background(), []string{"a@example.com"}, "Aviso", "cuerpo")

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(calls))
	}
	if calls[0].Subject != "Aviso" || calls[0].Body != "cuerpo" {
		t.Errorf("unexpected call %+v", calls[0])
	}
}

func TestDispatcherNilSenderIsNoop(t *testing.T) {
	d := NewDispatcher(nil, nil)
	if d.Enabled() {
		t.Error("dispatcher without sender should report disabled")
	}
	// must not panic
	d.Notify(context.Background(), []string{"a@example.com"}, "x", "y")
}

func TestDispatcherFailureGoesToSink(t *testing.T) {
	sender := &MockSender{ShouldFail: true}
	var sinkErr error
	d := NewDispatcher(sender, FailureSinkFunc(func(to []string, subject string, err error) {
		sinkErr = err
	}))

	d.Notify(context.Background(), []string{"a@example.com"}, "x", "y")

	if sinkErr == nil {
		t.Fatal("expected failure to reach sink")
	}
	if !errors.Is(sinkErr, sinkErr) || sinkErr.Error() != "mock send failure" {
		t.Errorf("unexpected sink error %v", sinkErr)
	}
}

func TestDispatcherNoRecipients(t *testing.T) {
	sender := &MockSender{}
	d := NewDispatcher(sender, nil)
	d.Notify(context.Background(), nil, "x", "y")
	if len(sender.Calls()) != 0 {
		t.Error("expected no send without recipients")
	}
}

func TestCollectEmails(t *testing.T) {
	got := CollectEmails(
		[]string{"a@x.com", " b@x.com "},
		[]string{"a@x.com", "", "c@x.com"},
	)
	want := []string{"a@x.com", "b@x.com", "c@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectEmails = %v, want %v", got, want)
	}
}

func TestSplitAddressList(t *testing.T) {
	got := SplitAddressList(" a@x.com, ,b@x.com ")
	want := []string{"a@x.com", "b@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitAddressList = %v, want %v", got, want)
	}
	if out := SplitAddressList(""); out != nil {
		t.Errorf("empty input should yield nil, got %v", out)
	}
}
