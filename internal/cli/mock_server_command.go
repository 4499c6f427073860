package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobassist/internal/mockapi"
	"jobassist/internal/model"
)

func runMockServer(args []string) error {
	fs := flag.NewFlagSet("mock-server", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:8000", "listen address")
	seed := fs.Bool("seed", true, "create a demo profile on start")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	mock := mockapi.New(mockapi.WithLogger(logger))
	if *seed {
		p := mock.SeedProfile(model.Profile{
			Name:            "Demo Freelancer",
			HourlyRate:      40,
			Skills:          []string{"React", "Node.js", "TypeScript", "Go"},
			ExperienceYears: 5,
			Bio:             "Full stack developer focused on web apps and APIs.",
		})
		logger.Info("seeded profile", "profile_id", p.ID, "name", p.Name)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mock,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock backend listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	fmt.Printf("mock backend on http://%s (ctrl+c to stop)\n", *addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mock server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
