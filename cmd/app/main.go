package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/forgeworks/crmapi/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:  "crmapi",
		Usage: "Consultancy admin API: CRM, projects, kanban boards and finances",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":8080",
				Usage: "HTTP listen address",
			},
			&cli.StringFlag{
				Name:  "db-path",
				Value: "./crmapi.sqlite",
				Usage: "SQLite file path",
			},
			&cli.StringFlag{
				Name:     "jwt-secret",
				Sources:  cli.EnvVars("CRMAPI_JWT_SECRET"),
				Usage:    "HMAC signing secret for session tokens",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "admin-email",
				Sources: cli.EnvVars("CRMAPI_ADMIN_EMAIL"),
				Usage:   "Optional dashboard user to create at startup",
			},
			&cli.StringFlag{
				Name:    "admin-password",
				Sources: cli.EnvVars("CRMAPI_ADMIN_PASSWORD"),
				Usage:   "Password for the startup dashboard user",
			},
			&cli.StringFlag{
				Name:    "admin-name",
				Value:   "admin",
				Sources: cli.EnvVars("CRMAPI_ADMIN_NAME"),
				Usage:   "Display name for the startup dashboard user",
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Sources: cli.EnvVars("CRMAPI_WEBHOOK_URL"),
				Usage:   "Notification webhook target URL (enables push delivery for lead and suggestion events)",
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Sources: cli.EnvVars("CRMAPI_WEBHOOK_SECRET"),
				Usage:   "HMAC-SHA256 signing secret for outbound webhook requests",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := app.Config{
				Addr:          c.String("addr"),
				DBPath:        c.String("db-path"),
				JWTSecret:     c.String("jwt-secret"),
				AdminEmail:    c.String("admin-email"),
				AdminPassword: c.String("admin-password"),
				AdminName:     c.String("admin-name"),
				WebhookURL:    c.String("webhook-url"),
				WebhookSecret: c.String("webhook-secret"),
			}

			server, closer, err := app.NewServer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					log.Printf("close resources: %v", closeErr)
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", cfg.Addr)
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case sig := <-sigCh:
				log.Printf("received signal %s", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
