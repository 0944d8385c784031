// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"puppytalk/internal/config"
	"puppytalk/internal/database"

	"github.com/jackc/pgx/v5"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|status|down> [steps]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	if cfg.DBDriver != database.DriverSQLite {
		if err := preflight(ctx, cfg); err != nil {
			return err
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		n, err := database.NewMigrator(db, database.GetMigrations()).Up(ctx)
		if err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Printf("sql migrations applied: %d", n)
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("mode=%s driver=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d",
			status.Mode, status.Driver, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
			len(status.AppliedVersions), len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			log.Printf("pending: %s", m)
		}
	case "down":
		steps := 1
		if flag.NArg() >= 2 {
			steps, err = strconv.Atoi(flag.Arg(1))
			if err != nil || steps < 1 {
				return fmt.Errorf("invalid step count %q", flag.Arg(1))
			}
		}
		m := database.NewMigrator(db, database.GetMigrations())
		for range steps {
			rolled, ok, err := m.Down(ctx)
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			if !ok {
				log.Println("nothing left to roll back")
				break
			}
			log.Printf("rolled back %s", rolled)
		}
	default:
		return usage()
	}

	return nil
}

// preflight checks the postgres server answers before gorm gets involved, so
// a bad host or password fails with the driver's own message.
func preflight(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, database.PostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("postgres preflight: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	var version string
	if err := conn.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return fmt.Errorf("postgres preflight: %w", err)
	}
	log.Printf("connected to postgres %s at %s:%s/%s", version, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return nil
}
