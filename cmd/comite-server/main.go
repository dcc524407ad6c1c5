package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/config"
	"github.com/comitetoraxvm/comite-torax/internal/domain/casefile"
	"github.com/comitetoraxvm/comite-torax/internal/domain/consultation"
	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/reminder"
	"github.com/comitetoraxvm/comite-torax/internal/domain/resource"
	"github.com/comitetoraxvm/comite-torax/internal/domain/review"
	"github.com/comitetoraxvm/comite-torax/internal/domain/screening"
	"github.com/comitetoraxvm/comite-torax/internal/domain/study"
	"github.com/comitetoraxvm/comite-torax/internal/domain/user"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
	"github.com/comitetoraxvm/comite-torax/internal/platform/db"
	"github.com/comitetoraxvm/comite-torax/internal/platform/mail"
	"github.com/comitetoraxvm/comite-torax/internal/platform/middleware"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

func main() {
	root := &cobra.Command{
		Use:           "comite-server",
		Short:         "Patient tracking service for the thoracic committee",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), remindCmd(), seedAdminCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setupLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	log.Logger = logger
	return logger
}

// app bundles everything built during the startup phase. Construction is
// strictly ordered: config, then infrastructure, then domain services;
// any failure aborts before the server accepts traffic.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	pool      *pgxpool.Pool
	users     *user.Service
	reminders *reminder.Service
	buildEcho func() *echo.Echo
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := setupLogger(cfg.Env)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	catalogs := catalog.Load(cfg.CatalogFile)
	files, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		pool.Close()
		return nil, err
	}
	auditLog := audit.NewLogger(cfg.AuditLog, logger)

	var sender mail.Sender
	if cfg.MailEnabled {
		sender = mail.NewSMTPSender(mail.Config{
			Server:   cfg.MailServer,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			UseTLS:   cfg.MailUseTLS,
			UseSSL:   cfg.MailUseSSL,
			From:     cfg.MailSender(),
		})
	}
	mailer := mail.NewDispatcher(sender, mail.FailureSinkFunc(func(to []string, subject string, err error) {
		logger.Error().Err(err).Strs("to", to).Str("subject", subject).Msg("mail delivery failed")
	}))

	userRepo := user.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	consultationRepo := consultation.NewRepoPG(pool)
	studyRepo := study.NewRepoPG(pool)
	screeningRepo := screening.NewRepoPG(pool)
	reviewRepo := review.NewRepoPG(pool)
	reminderRepo := reminder.NewRepoPG(pool)
	caseRepo := casefile.NewRepoPG(pool)
	resourceRepo := resource.NewRepoPG(pool)

	userSvc := user.NewService(userRepo, auditLog, []byte(cfg.SecretKey))
	patientSvc := patient.NewService(patientRepo, files, auditLog)
	studySvc := study.NewService(studyRepo, files, auditLog)
	screeningSvc := screening.NewService(screeningRepo, patientSvc, userSvc, catalogs, files, mailer, auditLog)
	reviewSvc := review.NewService(reviewRepo, patientSvc, userSvc, mailer, auditLog)
	reminderSvc := reminder.NewService(reminderRepo, patientSvc, userSvc, mailer, auditLog, screeningSvc)
	consultationSvc := consultation.NewService(consultationRepo,
		studyCreator{svc: studySvc}, reminderSvc, reviewRequester{svc: reviewSvc}, auditLog)
	caseSvc := casefile.NewService(caseRepo, patientSvc, consultationRepo, studyRepo, auditLog)
	resourceSvc := resource.NewService(resourceRepo, files, auditLog)

	buildEcho := func() *echo.Echo {
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.RequestID())
		e.Use(middleware.Logger(logger))
		e.Use(middleware.Recovery(logger))
		e.Use(echomw.CORS())

		public := e.Group("/api")
		user.NewHandler(userSvc).RegisterPublicRoutes(public)

		api := e.Group("/api", auth.Middleware([]byte(cfg.SecretKey)))
		user.NewHandler(userSvc).RegisterRoutes(api)
		patient.NewHandler(patientSvc, catalogs, userSvc).RegisterRoutes(api)
		consultation.NewHandler(consultationSvc).RegisterRoutes(api)
		study.NewHandler(studySvc).RegisterRoutes(api)
		screening.NewHandler(screeningSvc).RegisterRoutes(api)
		review.NewHandler(reviewSvc).RegisterRoutes(api)
		reminder.NewHandler(reminderSvc).RegisterRoutes(api)
		casefile.NewHandler(caseSvc).RegisterRoutes(api)
		resource.NewHandler(resourceSvc).RegisterRoutes(api)

		return e
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		users:     userSvc,
		reminders: reminderSvc,
		buildEcho: buildEcho,
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			e := a.buildEcho()
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().Str("port", a.cfg.Port).Msg("server listening")
				errCh <- e.Start(":" + a.cfg.Port)
			}()

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
			case <-ctx.Done():
				a.logger.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := e.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate [up|status]",
		Short: "Apply or inspect schema migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Env)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			m := db.NewMigrator(pool, dir)
			switch args[0] {
			case "up":
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				logger.Info().Int("applied", n).Msg("migrations up to date")
			case "status":
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, st := range statuses {
					state := "pending"
					if st.Applied {
						state = "applied " + st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%03d %-40s %s\n", st.Version, st.Name, state)
				}
			default:
				return fmt.Errorf("unknown migrate action %q", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./migrations", "migrations directory")
	return cmd
}

func remindCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send the control reminder emails due on a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.pool.Close()

			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			sent, err := a.reminders.SendDueOn(cmd.Context(), date)
			if err != nil {
				return err
			}
			a.logger.Info().Str("date", date).Int("sent", sent).Msg("reminder batch done")
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "due date (YYYY-MM-DD, default today)")
	return cmd
}

func seedAdminCmd() *cobra.Command {
	var username, password, email string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial administrator account if none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.pool.Close()

			if err := a.users.EnsureSeedAdmin(cmd.Context(), username, password, email); err != nil {
				return err
			}
			a.logger.Info().Str("username", username).Msg("admin account ready")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "admin", "admin password")
	cmd.Flags().StringVar(&email, "email", "admin@example.org", "admin email")
	return cmd
}

// studyCreator adapts the study service to the row shape the
// consultation form parses.
type studyCreator struct{ svc *study.Service }

func (a studyCreator) CreateForConsultation(ctx context.Context, patientID, consultationID uuid.UUID,
	rows []consultation.StudyRow, creator *uuid.UUID) ([]uuid.UUID, error) {
	inputs := make([]study.Input, len(rows))
	for i, r := range rows {
		inputs[i] = study.Input{
			StudyType:   r.Type,
			Date:        r.Date,
			Center:      r.Center,
			Description: r.Description,
			AccessCode:  r.AccessCode,
			PortalLink:  r.PortalLink,
		}
	}
	return a.svc.CreateBatch(ctx, patientID, consultationID, inputs, creator)
}

// reviewRequester drops the created request, which the consultation flow
// does not need.
type reviewRequester struct{ svc *review.Service }

func (a reviewRequester) Request(ctx context.Context, patientID uuid.UUID, consultationID, studyID *uuid.UUID,
	recipients []uuid.UUID, message *string, creator uuid.UUID) error {
	_, err := a.svc.Request(ctx, patientID, consultationID, studyID, recipients, message, creator)
	return err
}
