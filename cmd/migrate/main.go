// Command migrate runs or inspects schema migrations against whichever
// database driver pkg/config resolves, without booting the rest of the
// container.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	_ "github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database/postgres"
	_ "github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database/sqlite"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/migrations"
	"github.com/nitro-scheduler/nitro/pkg/config"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func connect(ctx context.Context) (database.Connection, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return conn, nil
}

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect and apply nitro schema migrations",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every not-yet-applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		switch conn.Driver() {
		case database.DriverSQLite:
			sqliteConn, ok := conn.(interface{ DB() *sql.DB })
			if !ok {
				return fmt.Errorf("sqlite connection missing DB() accessor")
			}
			if err := migrations.RunSQLiteMigrations(ctx, sqliteConn.DB()); err != nil {
				return err
			}
		case database.DriverPostgres:
			pgConn, ok := conn.(interface{ Pool() *pgxpool.Pool })
			if !ok {
				return fmt.Errorf("postgres connection missing Pool() accessor")
			}
			if err := migrations.RunPostgresMigrations(ctx, pgConn.Pool()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("no migration runner for driver %q", conn.Driver())
		}

		logger.Info("migrations applied", "driver", conn.Driver())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List every migration and whether it has been applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		var statuses []migrations.Status
		switch conn.Driver() {
		case database.DriverSQLite:
			sqliteConn, ok := conn.(interface{ DB() *sql.DB })
			if !ok {
				return fmt.Errorf("sqlite connection missing DB() accessor")
			}
			statuses, err = migrations.SQLiteStatus(ctx, sqliteConn.DB())
		case database.DriverPostgres:
			pgConn, ok := conn.(interface{ Pool() *pgxpool.Pool })
			if !ok {
				return fmt.Errorf("postgres connection missing Pool() accessor")
			}
			statuses, err = migrations.PostgresStatus(ctx, pgConn.Pool())
		default:
			return fmt.Errorf("no migration runner for driver %q", conn.Driver())
		}
		if err != nil {
			return err
		}

		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, s.Filename)
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(upCmd, statusCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("migrate command failed", "error", err)
		os.Exit(1)
	}
}
