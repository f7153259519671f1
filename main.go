package main

import (
	"context"
	"fmt"
	"os"

	"food-storefront/config"
	"food-storefront/db"
	"food-storefront/log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "food-storefront",
	Short: "Restaurant storefront and admin dashboard API",
	Long: `food-storefront serves the daily menu, cart, meal-prep subscriptions,
catering requests, the customer account and the admin dashboard over JSON.

Running it without a subcommand is the same as "serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded SQL migrations to PostgreSQL",
	RunE:  runMigrate,
}

var addrFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if addrFlag != "" {
		cfg.HTTP.Addr = addrFlag
	}
	log.Configure(log.Config{Level: cfg.Log.Level})
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := db.Init(ctx, cfg.DB); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	logger := log.WithComponent("migrate")
	return applyMigrations(ctx, db.Pool, func(name string) {
		logger.Info().Str("file", name).Msg("applied migration")
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
