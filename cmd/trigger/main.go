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

// Cornerstone Referral Assistant — Manual Trigger
//
// Standalone CLI for operating the assistant by hand:
//
//	go run ./cmd/trigger/ --mode blast [--window 720h]
//	go run ./cmd/trigger/ --mode simulate [--from +1555555555] [--text "..."]
//	go run ./cmd/trigger/ --mode intake --from +15551234567 [--text "..."]
//	go run ./cmd/trigger/ --mode enroll --from +15551234567 --name "..." [--email "..."]
//	go run ./cmd/trigger/ --mode notify --text "..."
//
// Simulate mode feeds a synthetic inbound message through the real
// conversation handler and prints the reply, which is useful for checking
// prompts and persistence against a live environment without the
// messaging provider in the loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cornerstone/referral/internal/blast"
	"github.com/cornerstone/referral/internal/config"
	"github.com/cornerstone/referral/internal/conversation"
	"github.com/cornerstone/referral/internal/llm"
	"github.com/cornerstone/referral/internal/models"
	"github.com/cornerstone/referral/internal/queue"
	"github.com/cornerstone/referral/internal/sms"
	"github.com/cornerstone/referral/internal/store"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	modeFlag := flag.String("mode", "simulate", "What to run: simulate, blast, intake, enroll, or notify")
	windowFlag := flag.Duration("window", 0, "Blast eligibility window (blast mode; 0 = configured default)")
	fromFlag := flag.String("from", "+1555555555", "Phone number (simulate, intake, and enroll modes)")
	textFlag := flag.String("text", "Yeah, I know someone! My friend Sarah is looking for a place. Her number is 111-555-1234", "Message text (simulate, intake, and notify modes)")
	nameFlag := flag.String("name", "", "Tenant name (enroll mode)")
	emailFlag := flag.String("email", "", "Tenant email (enroll mode)")
	flag.Parse()

	switch *modeFlag {
	case "simulate", "blast", "intake", "enroll", "notify":
	default:
		fmt.Fprintf(os.Stderr, "Error: --mode must be simulate, blast, intake, enroll, or notify\n\n")
		flag.Usage()
		os.Exit(1)
	}

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// --- Messaging Client ---
	smsClient, err := sms.NewClient(ctx, cfg.TelnyxAPIKey, cfg.FromNumber, cfg.TelnyxBaseURL, cfg.SMSTimeout)
	if err != nil {
		slog.Error("failed to create messaging client", "error", err)
		os.Exit(1)
	}

	switch *modeFlag {
	case "blast":
		dispatcher := blast.NewDispatcher(db, smsClient, cfg.BlastWindow, cfg.BlastMessage)

		slog.Info("sending referral blast", "window", *windowFlag)
		report, err := dispatcher.Run(ctx, *windowFlag)
		if err != nil {
			slog.Error("blast failed", "error", err)
			os.Exit(1)
		}
		slog.Info("blast results",
			"successful", report.Successful,
			"failed", report.Failed,
			"total", report.Total,
		)

	case "simulate":
		llmClient, err := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
		if err != nil {
			slog.Error("failed to create language-model client", "error", err)
			os.Exit(1)
		}

		publisher, closeQueue := optionalPublisher(ctx, cfg)
		defer closeQueue()

		conv := conversation.NewHandler(db, llmClient, llmClient, smsClient, publisher)

		slog.Info("simulating inbound message", "from", *fromFlag, "text", *textFlag)
		start := time.Now()
		reply := conv.ProcessMessage(ctx, *fromFlag, *textFlag)
		slog.Info("conversation turn complete",
			"reply", reply,
			"elapsed", time.Since(start),
		)

	case "intake":
		phone := models.NormalizePhone(*fromFlag)

		existing, err := db.GetLeadByPhone(ctx, phone)
		if err != nil {
			slog.Error("failed to look up lead", "error", err)
			os.Exit(1)
		}
		if existing != nil {
			slog.Info("lead already exists", "phone", phone, "source", existing.ReferralSource)
			return
		}

		if err := db.CreateLead(ctx, phone, *textFlag); err != nil {
			slog.Error("failed to create lead", "error", err)
			os.Exit(1)
		}
		slog.Info("lead created", "phone", phone)

		publisher, closeQueue := optionalPublisher(ctx, cfg)
		defer closeQueue()
		if publisher != nil {
			if err := publisher.PublishLeadEvent(ctx, models.Lead{Phone: phone}, ""); err != nil {
				slog.Warn("failed to publish lead event", "error", err)
			}
		}

	case "notify":
		// Announcements go to every active tenant, outside the blast
		// eligibility window, and do not touch status or conversation logs.
		phones, err := db.ListActiveTenantPhones(ctx)
		if err != nil {
			slog.Error("failed to list active tenants", "error", err)
			os.Exit(1)
		}
		if len(phones) == 0 {
			slog.Info("no active tenants to notify")
			return
		}

		slog.Info("sending announcement", "recipients", len(phones))
		report := smsClient.SendBulk(ctx, phones, *textFlag)
		slog.Info("announcement results",
			"successful", report.Successful,
			"failed", report.Failed,
			"total", report.Total,
		)

	case "enroll":
		tenant := models.Tenant{
			Phone: models.NormalizePhone(*fromFlag),
			Name:  *nameFlag,
			Email: *emailFlag,
		}
		if err := db.CreateTenant(ctx, tenant); err != nil {
			slog.Error("failed to enroll tenant", "error", err)
			os.Exit(1)
		}
		slog.Info("tenant enrolled", "phone", tenant.Phone, "name", tenant.Name)
	}
}

// optionalPublisher connects the lead queue when Redis is reachable. A
// missing Redis should not block hand-run operations, so failures degrade
// to a nil publisher with a warning.
func optionalPublisher(ctx context.Context, cfg *config.Config) (conversation.LeadPublisher, func()) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, lead events will not be published", "error", err)
		return nil, func() {}
	}
	rdb := redis.NewClient(opt)
	p := queue.NewPublisher(rdb, cfg.LeadsQueue)
	if err := p.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, lead events will not be published", "error", err)
		rdb.Close()
		return nil, func() {}
	}
	return p, func() { rdb.Close() }
}
