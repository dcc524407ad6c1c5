package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret-key")

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", RoleMedico, "Dr. Test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", claims.Subject)
	}
	if claims.Role != RoleMedico {
		t.Errorf("expected role medico, got %s", claims.Role)
	}
	if claims.FullName != "Dr. Test" {
		t.Errorf("expected full name Dr. Test, got %s", claims.FullName)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", RoleMedico, "Dr. Test")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken([]byte("other-secret"), token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := Middleware(testSecret)(handler)(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddleware_SetsContext(t *testing.T) {
	token, _ := IssueToken(testSecret, "user-9", RoleAdmin, "Admin")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != "user-9" {
			t.Errorf("expected user-9, got %s", UserIDFromContext(ctx))
		}
		if RoleFromContext(ctx) != RoleAdmin {
			t.Errorf("expected admin role, got %s", RoleFromContext(ctx))
		}
		return c.NoContent(http.StatusOK)
	}
	if err := Middleware(testSecret)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	newCtx := func(role string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), "u", role, "n"))
		return e.NewContext(req, httptest.NewRecorder())
	}

	if err := RequireRole(RoleMedico)(handler)(newCtx(RoleMedico)); err != nil {
		t.Errorf("medico should pass medico check: %v", err)
	}
	if err := RequireRole(RoleMedico)(handler)(newCtx(RoleAdmin)); err != nil {
		t.Errorf("admin should pass every check: %v", err)
	}
	err := RequireAdmin()(handler)(newCtx(RoleMedico))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for medico on admin route, got %v", err)
	}
}

func TestPasswordIsStrong(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Abcdef1!xx", true},
		{"short1A!", false},           // under ten chars
		{"alllowercase1!", false},     // no upper
		{"ALLUPPERCASE1!", false},     // no lower
		{"NoDigitsHere!", false},      // no digit
		{"NoSymbolsHere1", false},     // no symbol
		{"", false},
	}
	for _, tc := range cases {
		if got := PasswordIsStrong(tc.password); got != tc.want {
			t.Errorf("PasswordIsStrong(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secreta123!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "Secreta123!") {
		t.Error("expected password to match its hash")
	}
	if CheckPassword(hash, "otra") {
		t.Error("expected mismatch for wrong password")
	}
}
