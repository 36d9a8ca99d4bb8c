package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/ygodle/internal/daily"
	"github.com/robalobadob/ygodle/internal/httpserver"
	"github.com/robalobadob/ygodle/internal/play"
	"github.com/robalobadob/ygodle/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily rotation scheduler",
		RunE:  runServe,
	}
	cmd.Flags().StringVarP(&portFlag, "port", "p", "", "Listen port (default: $PORT or 5175)")
	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	clock, err := cfg.Clock()
	if err != nil {
		return err
	}

	ds := daily.NewStore(db)
	rotator := daily.NewRotator(ds, catalog, cfg.DailySalt)
	provider := daily.NewProvider(ds, catalog)
	svc := play.NewService(clock, provider, provider, catalog, store.NewSQLStore(db), play.Options{
		MaxAttempts:   cfg.MaxAttempts,
		RetentionDays: cfg.RetentionDays,
		ShareURL:      cfg.ShareURL,
	})

	go func() {
		if err := daily.NewScheduler(rotator, clock).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	srv := httpserver.New(svc, ds, rotator, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		AdminKeyHash: cfg.AdminKeyHash,
		Production:   cfg.Production,
	})
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("db", cfg.Database.Type).Msg("starting ygodle server")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
