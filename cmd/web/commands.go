package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/canchapp/canchapp/internal/config"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/media"
	"github.com/canchapp/canchapp/internal/middleware"
	"github.com/canchapp/canchapp/internal/service"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRootCmd() *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:   "canchapp",
		Short: "CanchApp court booking marketplace",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using environment variables")
			}
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			slog.SetDefault(config.NewLogger(cfg, os.Stderr))
			return nil
		},
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd(&cfg))
	root.AddCommand(migrateCmd(&cfg))
	root.AddCommand(importCourtsCmd(&cfg))
	root.AddCommand(exportTemplateCmd())
	root.AddCommand(createAdminCmd(&cfg))
	root.AddCommand(workerCmd(&cfg))
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := bootstrap(ctx, *cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.users.EnsureGuestUser(ctx); err != nil {
				return err
			}
			middleware.InitAuth(*cfg)
			if cfg.DevAutoLogin {
				slog.Warn("DEV_AUTO_LOGIN is on, local requests act as the guest user")
			}

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           newRouter(a),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Println("Server starting on", cfg.BaseURL)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Println("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB(*cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			color.Green("Database %s is up to date", cfg.DatabasePath)
			return nil
		},
	}
}

func importCourtsCmd(cfg *config.Config) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "import-courts <file>",
		Short: "Create courts for an owner from a CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			info := media.Classify(args[0])
			if !info.IsData() {
				return fmt.Errorf("%s: only .csv and .json files can be imported", args[0])
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, err := openDB(*cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			// a running server may hold cached searches in Redis
			searchCache, closer, err := newSearchCache(ctx, *cfg)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			userStore := store.NewUserStore(database)
			imports := service.NewImportService(database, store.NewCourtStore(database), userStore, searchCache)
			result, err := imports.ImportCourtsAs(ctx, owner, info.Kind, data)
			if result != nil {
				for _, rowErr := range result.Errors {
					color.Red("row %d %s: %s", rowErr.Row, rowErr.Field, rowErr.Message)
				}
			}
			if err != nil {
				return err
			}
			color.Green("Imported %d courts for %s (pending review)", result.Imported, owner)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Email of the court owner")
	return cmd
}

func exportTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-template",
		Short: "Write the court import CSV template",
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := service.NewImportService(nil, nil, nil, nil).ExportTemplate(w); err != nil {
				return err
			}
			if out != "" {
				color.Green("Template written to %s", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func createAdminCmd(cfg *config.Config) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				fmt.Print("Email: ")
				value, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(value)
			}
			password, err := promptPassword()
			if err != nil {
				return err
			}

			database, err := openDB(*cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			users := service.NewUserService(database, store.NewUserStore(database))
			u, err := users.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			color.Green("%s is now an admin (%s)", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	return cmd
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}

func workerCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume domain events and write user notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.RabbitURL == "" {
				return fmt.Errorf("RABBIT_URL is required to run the worker")
			}
			ctx, stop := signalContext()
			defer stop()

			database, err := openDB(*cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			consumer, err := events.NewConsumer(events.ConsumerConfig{
				URL:      cfg.RabbitURL,
				Exchange: cfg.RabbitExchange,
				Queue:    cfg.NotifyQueue,
				Keys:     events.Keys,
			})
			if err != nil {
				return err
			}
			defer consumer.Close()

			handler := events.NewNotificationHandler(service.NewNotificationService(store.NewNotificationStore(database)))
			color.Cyan("Worker consuming %s from %s", cfg.NotifyQueue, cfg.RabbitExchange)
			return consumer.Run(ctx, handler.Handle)
		},
	}
}
