// Command migrate runs schema operations for the blog database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"blogapi/internal/bootstrap"
	"blogapi/internal/config"
	"blogapi/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|status|down|constraints|reset> [version]")
}

func run() error {
	force := flag.Bool("force", false, "allow reset outside development and test")
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipSchema: true, SkipRedis: true})
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
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
		log.Printf("mode=%s env=%s driver=%s run_sql=%t run_auto=%t applied=%d pending=%d",
			status.Mode, status.Environment, status.Driver, status.WillRunSQL, status.WillRunAutoMigrate,
			len(status.AppliedVersions), len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			log.Printf("pending: %s", m)
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
	case "constraints":
		return listConstraints(db)
	case "reset":
		if cfg.Env != "development" && cfg.Env != "test" && !*force {
			return fmt.Errorf("refusing to reset the %s database without -force", cfg.Env)
		}
		if err := resetSchema(db); err != nil {
			return err
		}
		log.Println("schema dropped; run `migrate up` or `migrate auto` to recreate it")
	default:
		return usage()
	}

	return nil
}

// listConstraints prints the foreign keys and unique constraints of the
// public schema.
func listConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != database.DialectPostgres {
		return fmt.Errorf("constraints is only supported on postgres")
	}
	var rows []struct {
		Relname string `gorm:"column:relname"`
		Conname string `gorm:"column:conname"`
		Def     string `gorm:"column:def"`
	}
	err := db.Raw(`SELECT r.relname, c.conname, pg_get_constraintdef(c.oid) AS def
		FROM pg_constraint c
		JOIN pg_class r ON c.conrelid = r.oid
		JOIN pg_namespace n ON n.oid = r.relnamespace
		WHERE n.nspname = 'public' AND c.contype IN ('f', 'u', 'c')
		ORDER BY r.relname, c.conname`).Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("list constraints: %w", err)
	}
	fmt.Println("Constraints in public schema:")
	for _, r := range rows {
		fmt.Printf(" - %s on %s: %s\n", r.Conname, r.Relname, r.Def)
	}
	return nil
}

func resetSchema(db *gorm.DB) error {
	if db.Dialector.Name() == database.DialectPostgres {
		if err := db.Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public;").Error; err != nil {
			return fmt.Errorf("drop schema: %w", err)
		}
		return db.Exec("GRANT ALL ON SCHEMA public TO public;").Error
	}
	tables, err := db.Migrator().GetTables()
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
