package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelflife/internal/app"
	"shelflife/internal/config"
	"shelflife/internal/database"
	"shelflife/internal/models"
	"shelflife/internal/repositories"
	"shelflife/internal/services"
	"shelflife/internal/views"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shelflife",
		Short:         "Track products by their expiry date",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the web server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database tables",
			RunE:  runMigrate,
		},
		newExpiringCmd(),
	)
	return root
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("Invalid configuration")
		return nil, err
	}
	app.SetupLogging(cfg)
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize application")
		return err
	}
	defer a.Close()

	if err := a.StartConsumer(); err != nil {
		logrus.WithError(err).Error("Failed to start product event consumer")
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.Port).Info("Starting server")
		serverErr <- a.HTTP.Listen(cfg.Port)
	}()

	select {
	case err := <-serverErr:
		logrus.WithError(err).Error("Server failed to start")
		return err
	case <-quit:
	}

	logrus.Info("Shutting down server...")
	if err := a.HTTP.Shutdown(); err != nil {
		logrus.WithError(err).Error("Error during Fiber shutdown")
	}
	logrus.Info("Server gracefully stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Error("Migration failed")
		return err
	}
	defer database.Close(db)

	logrus.Info("Database migrated")
	return nil
}

func newExpiringCmd() *cobra.Command {
	var within int
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List products expiring within a number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if within < 0 {
				return fmt.Errorf("--within must not be negative, got %d", within)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			service := services.NewProductService(repositories.NewGORMProductRepository(db), nil)
			products, today, err := service.ExpiringWithin(context.Background(), within)
			if err != nil {
				return err
			}
			renderExpiring(cmd.OutOrStdout(), products, today, within)
			return nil
		},
	}
	cmd.Flags().IntVar(&within, "within", 7, "days from today to include")
	return cmd
}

func renderExpiring(out io.Writer, products []models.Product, today time.Time, within int) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Products expiring by %s", today.AddDate(0, 0, within).Format(models.DateLayout)))
	t.AppendHeader(table.Row{"Name", "Expiry date", "Status", "Description"})
	for _, p := range products {
		t.AppendRow(table.Row{p.Name, p.ExpiryString(), views.ExpiryStatus(p.ExpiryDate, today), p.Description})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(products)})
	t.Render()
}
