package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/config"
	"github.com/Kkzzkk0611/WSsupportApp-202601/migrations"
)

const ensureTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("artmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		err = migrateUp(ctx, pool)
	case "down":
		err = migrateDown(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

// versions lists migration versions ("001_init_extensions", ...) in order.
func versions() ([]string, error) {
	files, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, strings.TrimSuffix(f, ".up.sql"))
	}
	sort.Strings(out)
	return out, nil
}

func applied(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	if _, err := pool.Exec(ctx, ensureTable); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	all, err := versions()
	if err != nil {
		return err
	}
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}

	for _, v := range all {
		if done[v] {
			continue
		}
		data, err := migrations.FS.ReadFile(v + ".up.sql")
		if err != nil {
			return fmt.Errorf("read %s: %w", v, err)
		}
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, v)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", v, err)
		}
		fmt.Printf("UP    %s\n", v)
	}

	log.Println("all migrations applied")
	return nil
}

// migrateDown reverts the most recently applied migration.
func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	all, err := versions()
	if err != nil {
		return err
	}
	done, err := applied(ctx, pool)
	if err != nil {
		return err
	}

	for i := len(all) - 1; i >= 0; i-- {
		v := all[i]
		if !done[v] {
			continue
		}
		data, err := migrations.FS.ReadFile(v + ".down.sql")
		if err != nil {
			return fmt.Errorf("read %s: %w", v, err)
		}
		// The row goes first: the earliest down script drops schema_migrations.
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, v); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, string(data))
			return err
		})
		if err != nil {
			return fmt.Errorf("revert %s: %w", v, err)
		}
		fmt.Printf("DOWN  %s\n", v)
		return nil
	}

	log.Println("nothing to revert")
	return nil
}
