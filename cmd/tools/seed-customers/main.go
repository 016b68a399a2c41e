// cmd/tools/seed-customers/main.go
//
// Creates the customers table and loads demo registry records into
// PostgreSQL so the assistant can run against real infrastructure.
//
//	go run ./cmd/tools/seed-customers -dsn "host=localhost ..."
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"loan-assistant/internal/common/config"
	"loan-assistant/internal/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	phone           VARCHAR(10) PRIMARY KEY,
	name            TEXT        NOT NULL,
	credit_score    INT         NOT NULL,
	approved_amount BIGINT      NOT NULL,
	income          BIGINT      NOT NULL,
	blacklisted     BOOLEAN     NOT NULL DEFAULT FALSE
)`

const upsert = `
INSERT INTO customers (phone, name, credit_score, approved_amount, income, blacklisted)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (phone) DO UPDATE SET
	name = EXCLUDED.name,
	credit_score = EXCLUDED.credit_score,
	approved_amount = EXCLUDED.approved_amount,
	income = EXCLUDED.income,
	blacklisted = EXCLUDED.blacklisted`

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL DSN; defaults to configs/config.yaml")
	flag.Parse()

	connStr := *dsn
	if connStr == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
			os.Exit(1)
		}
		connStr = cfg.Database.Postgres.GetDSN()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "db ping failed: %v\n", err)
		os.Exit(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		fmt.Fprintf(os.Stderr, "schema creation failed: %v\n", err)
		os.Exit(1)
	}

	seeded := 0
	for _, rec := range registry.SeedRecords() {
		if _, err := db.ExecContext(ctx, upsert,
			rec.Phone, rec.Name, rec.CreditScore, rec.ApprovedAmount, rec.Income, rec.Blacklisted); err != nil {
			fmt.Fprintf(os.Stderr, "seeding %s failed: %v\n", rec.Phone, err)
			os.Exit(1)
		}
		seeded++
	}

	fmt.Printf("seeded %d customer records\n", seeded)
}
