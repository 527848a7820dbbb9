package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-attendance/internal/application"
	"github.com/example/event-attendance/internal/config"
	httptransport "github.com/example/event-attendance/internal/http"
	"github.com/example/event-attendance/internal/logging"
	"github.com/example/event-attendance/internal/persistence"
	"github.com/example/event-attendance/internal/persistence/sqlite"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	personRepo := sqlite.NewPersonRepository(pool)
	people := newPersonAdapter(personRepo)
	events := newEventAdapter(sqlite.NewEventRepository(pool))
	attendances := newAttendanceAdapter(sqlite.NewAttendanceRepository(pool))
	sessions := newSessionAdapter(sqlite.NewSessionRepository(pool))

	guestIssuer := application.NewGuestIssuer(people, idGenerator, tokenGenerator, now, cfg.GuestEmailDomain, logger)
	identities := application.NewIdentityResolver(people, guestIssuer)

	attendanceService := application.NewAttendanceService(attendances, events, people, identities, idGenerator, now, logger)
	eventService := application.NewEventService(events, attendances, people, idGenerator, now, logger)
	userService := application.NewUserService(people, idGenerator, now, logger)
	authService := application.NewAuthService(people, sessions, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(userService, authService, logger),
		Events:   httptransport.NewEventHandler(eventService, logger),
		RSVPs:    httptransport.NewRSVPHandler(attendanceService, logger),
		Users:    httptransport.NewUserHandler(userService, attendanceService, logger),
		Invites:  httptransport.NewInviteHandler(eventService, cfg.PublicBaseURL, logger),
		Sessions: authService,
		Logger:   logger,
	})

	go runMaintenance(ctx, cfg, personRepo, authService, now, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("attendance API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// runMaintenance periodically prunes expired sessions and guest identities
// that were issued but never joined anything within the retention window.
func runMaintenance(ctx context.Context, cfg config.Config, people persistence.PersonRepository, auth *application.AuthService, now func() time.Time, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.GuestSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)

		if err := auth.PurgeExpiredSessions(sweepCtx); err != nil {
			logger.Error("failed to purge expired sessions", "error", err)
		}

		cutoff := now().Add(-cfg.GuestRetention)
		removed, err := people.DeleteOrphanGuests(sweepCtx, cutoff)
		if err != nil {
			logger.Error("failed to sweep orphan guests", "error", err)
		} else if removed > 0 {
			logger.Info("orphan guests removed", "count", removed, "cutoff", cutoff)
		}

		cancel()
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		// Session tokens must never fall back to anything guessable.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
