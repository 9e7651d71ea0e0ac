// Copyright (c) 2026 Cornerstone Real Estate
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Cornerstone Referral Assistant — Tenant Roster Seeder
//
// Bulk-imports tenants from a YAML roster so a property can be brought
// into the referral program in one shot. Phones already present are
// skipped, not overwritten.
//
// Usage:
//
//	go run ./cmd/seed/ --file tenants.yaml
//
// Roster format:
//
//	- phone: "+15551234567"
//	  name: Jordan Smith
//	  email: jordan@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/cornerstone/referral/internal/config"
	"github.com/cornerstone/referral/internal/models"
	"github.com/cornerstone/referral/internal/store"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	fileFlag := flag.String("file", "", "YAML tenant roster to import (required)")
	flag.Parse()

	if *fileFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: --file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*fileFlag)
	if err != nil {
		slog.Error("failed to read roster file", "file", *fileFlag, "error", err)
		os.Exit(1)
	}

	var tenants []models.Tenant
	if err := yaml.Unmarshal(data, &tenants); err != nil {
		slog.Error("failed to parse roster YAML", "file", *fileFlag, "error", err)
		os.Exit(1)
	}

	valid := tenants[:0]
	for _, t := range tenants {
		t.Phone = models.NormalizePhone(t.Phone)
		if t.Phone == "" {
			slog.Warn("skipping roster entry without phone", "name", t.Name)
			continue
		}
		valid = append(valid, t)
	}

	if len(valid) == 0 {
		slog.Error("roster contains no usable tenants", "file", *fileFlag)
		os.Exit(1)
	}

	// --- Load Configuration ---
	// Seeding only touches the database, so messaging and language-model
	// credentials are not required here.
	cfg, err := config.LoadDatabase()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// --- Connect to PostgreSQL ---
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		slog.Error("invalid DATABASE_URL", "error", err)
		os.Exit(1)
	}
	if cfg.DatabasePassword != "" {
		poolCfg.ConnConfig.Password = cfg.DatabasePassword
	}
	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	db, err := store.New(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise referral store", "error", err)
		os.Exit(1)
	}

	inserted, err := db.BulkCreateTenants(ctx, valid)
	if err != nil {
		slog.Error("tenant import failed", "inserted", inserted, "error", err)
		os.Exit(1)
	}

	slog.Info("tenant roster imported",
		"file", *fileFlag,
		"inserted", inserted,
		"skipped", len(valid)-inserted,
	)
}
