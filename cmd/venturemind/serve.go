package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/venturemind/venturemind-backend/internal/a2a"
	"github.com/venturemind/venturemind-backend/internal/account"
	"github.com/venturemind/venturemind-backend/internal/api"
	"github.com/venturemind/venturemind-backend/internal/artifact"
	"github.com/venturemind/venturemind-backend/internal/config"
	"github.com/venturemind/venturemind-backend/internal/mailer"
	"github.com/venturemind/venturemind-backend/internal/store"
)

const shutdownGrace = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (chat, auth, history, stream, A2A)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		publicURL, _ := cmd.Flags().GetString("public-url")
		if publicURL == "" {
			publicURL = "http://localhost:" + cfg.Port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, publicURL)
	},
}

func init() {
	serveCmd.Flags().String("public-url", "", "externally visible base URL advertised in the agent card")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, publicURL string) error {
	orch, closeGen, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGen()

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	mail := mailer.New(mailer.Config{
		Server:   cfg.SMTP.Server,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		Sender:   cfg.SMTP.Sender,
		AppURL:   publicURL,
	}, nil)

	accounts, err := account.NewService(db, mail, account.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}

	deps := api.Deps{
		Generator: orch,
		Accounts:  accounts,
		History:   db,
		Agent:     a2a.NewA2AHandler(orch, publicURL),
		RateLimit: api.RateLimit{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst},
	}
	if cfg.Artifact.Enabled() {
		objects, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return err
		}
		deps.Logos = artifact.NewLogoArchiver(objects)
		slog.Info("logo archive enabled", "bucket", objects.Bucket())
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("VentureMind backend starting", "port", cfg.Port)
		slog.Info("agent card available", "url", publicURL+"/.well-known/agent.json")
		slog.Info("A2A endpoint available", "url", publicURL+"/a2a/venture")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
