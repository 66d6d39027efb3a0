package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/dermaclinic/dermaclinic/internal/config"
	"github.com/dermaclinic/dermaclinic/internal/domain/analysis"
	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/domain/imaging"
	"github.com/dermaclinic/dermaclinic/internal/domain/medication"
	"github.com/dermaclinic/dermaclinic/internal/domain/patient"
	"github.com/dermaclinic/dermaclinic/internal/domain/prescription"
	"github.com/dermaclinic/dermaclinic/internal/domain/scheduling"
	"github.com/dermaclinic/dermaclinic/internal/platform/analyzer"
	"github.com/dermaclinic/dermaclinic/internal/platform/auth"
	"github.com/dermaclinic/dermaclinic/internal/platform/blobstore"
	"github.com/dermaclinic/dermaclinic/internal/platform/db"
	"github.com/dermaclinic/dermaclinic/internal/platform/middleware"
	"github.com/dermaclinic/dermaclinic/internal/platform/notification"
	"github.com/dermaclinic/dermaclinic/internal/platform/sandbox"
	"github.com/dermaclinic/dermaclinic/internal/platform/session"
)

// devJWTSecret signs tokens when no JWT_SECRET is configured. Development
// only; config validation rejects a missing secret in production.
const devJWTSecret = "dev-only-signing-secret-not-for-production"

// stores bundles every repository plus the backend-specific infrastructure.
type stores struct {
	users          identity.Repository
	patients       patient.Repository
	appointments   scheduling.Repository
	medications    medication.Repository
	prescriptions  prescription.Repository
	analyses       analysis.Repository
	validations    analysis.ValidationRepository
	questionnaires analysis.QuestionnaireRepository
	notifications  analysis.NotificationRepository

	sessions session.Store
	images   blobstore.ImageStore
	pool     *pgxpool.Pool
}

func buildStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StorageBackend == config.BackendMemory {
		return &stores{
			users:          identity.NewMemRepo(),
			patients:       patient.NewMemRepo(),
			appointments:   scheduling.NewMemRepo(),
			medications:    medication.NewMemRepo(),
			prescriptions:  prescription.NewMemRepo(),
			analyses:       analysis.NewMemRepo(),
			validations:    analysis.NewMemValidationRepo(),
			questionnaires: analysis.NewMemQuestionnaireRepo(),
			notifications:  analysis.NewMemNotificationRepo(),
			sessions:       session.NewMemoryStore(),
			images:         blobstore.NewMemoryStore(),
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewPGStoreFromPool(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	images, err := blobstore.NewDiskStore(cfg.UploadDir)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &stores{
		users:          identity.NewPGRepo(pool),
		patients:       patient.NewPGRepo(pool),
		appointments:   scheduling.NewPGRepo(pool),
		medications:    medication.NewPGRepo(pool),
		prescriptions:  prescription.NewPGRepo(pool),
		analyses:       analysis.NewPGRepo(pool),
		validations:    analysis.NewPGValidationRepo(pool),
		questionnaires: analysis.NewPGQuestionnaireRepo(pool),
		notifications:  analysis.NewPGNotificationRepo(pool),
		sessions:       sessions,
		images:         images,
		pool:           pool,
	}, nil
}

func (s *stores) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// services bundles the domain services built on top of a stores set.
type services struct {
	users         *identity.Service
	patients      *patient.Service
	appointments  *scheduling.Service
	medications   *medication.Service
	prescriptions *prescription.Service
	analyses      *analysis.Service
}

func buildServices(st *stores, logger zerolog.Logger) *services {
	users := identity.NewService(st.users)
	patients := patient.NewService(st.patients)
	medications := medication.NewService(st.medications)

	pd := patientDirectory{svc: patients}
	outbox := notification.NewDispatcher(
		notification.NewTemplateEngine(),
		notification.NewLogSender(logger),
		notification.NewLogSender(logger),
	)

	return &services{
		users:         users,
		patients:      patients,
		appointments:  scheduling.NewService(st.appointments, pd),
		medications:   medications,
		prescriptions: prescription.NewService(st.prescriptions, pd, medicationCatalog{svc: medications}),
		analyses: analysis.NewService(
			st.analyses, st.validations, st.questionnaires, st.notifications,
			pd, expertDirectory{svc: users},
			analyzer.NewSimulated(logger), outbox, logger,
		),
	}
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	svcs := buildServices(st, logger)

	if cfg.SeedDemoData && cfg.StorageBackend == config.BackendMemory {
		seeder := sandbox.NewSeeder(svcs.users, svcs.patients, svcs.medications, logger)
		if err := seeder.Seed(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	session.StartSweeper(ctx, st.sessions, time.Hour)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = devJWTSecret
	}
	issuer := auth.NewTokenIssuer(secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.BodyLimit("1M", "25M"),
		middleware.RequestTimeout(30*time.Second),
		middleware.NewClientRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}),
	)

	e.GET("/health", func(c echo.Context) error {
		status := db.CheckHealth(c.Request().Context(), st.pool)
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, map[string]any{
			"status":   status,
			"backend":  cfg.StorageBackend,
			"database": status.Healthy,
		})
	})

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	identityHandler := identity.NewHandler(svcs.users, issuer, st.sessions, sessionTTL)

	public := e.Group("/api/v1")
	identityHandler.RegisterPublicRoutes(public)

	api := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("running with the development identity stub; set JWT_SECRET for real tokens")
		api.Use(auth.DevMiddleware())
	} else {
		api.Use(auth.Middleware(issuer))
	}

	identityHandler.RegisterRoutes(api)
	patient.NewHandler(svcs.patients).RegisterRoutes(api)
	scheduling.NewHandler(svcs.appointments).RegisterRoutes(api)
	medication.NewHandler(svcs.medications).RegisterRoutes(api)
	prescription.NewHandler(svcs.prescriptions).RegisterRoutes(api)
	analysis.NewHandler(svcs.analyses).RegisterRoutes(api)
	imaging.NewHandler(st.images).RegisterRoutes(api)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.StorageBackend).
			Msg("clinic server listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func seed(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	svcs := buildServices(st, logger)
	return sandbox.NewSeeder(svcs.users, svcs.patients, svcs.medications, logger).Seed(ctx)
}
