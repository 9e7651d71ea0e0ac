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

// Cornerstone Referral Assistant — Service
//
// Entry point for the referral assistant. It:
//  1. Loads configuration from config.yaml and the environment
//  2. Connects to PostgreSQL and Redis
//  3. Constructs the messaging, language-model, and persistence collaborators
//  4. Serves the inbound message webhook
//  5. Optionally runs the referral blast on a schedule
//  6. Serves health and referral-stats endpoints
//  7. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cornerstone/referral/internal/blast"
	"github.com/cornerstone/referral/internal/config"
	"github.com/cornerstone/referral/internal/conversation"
	"github.com/cornerstone/referral/internal/llm"
	"github.com/cornerstone/referral/internal/queue"
	"github.com/cornerstone/referral/internal/sms"
	"github.com/cornerstone/referral/internal/store"
	"github.com/cornerstone/referral/internal/webhook"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting referral assistant service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"model", cfg.OpenAIModel,
		"blast_window", cfg.BlastWindow,
		"blast_interval", cfg.BlastInterval,
	)

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

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	db, err := store.New(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise referral store", "error", err)
		os.Exit(1)
	}

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)

	publisher := queue.NewPublisher(rdb, cfg.LeadsQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	// --- Messaging Client ---
	smsClient, err := sms.NewClient(ctx, cfg.TelnyxAPIKey, cfg.FromNumber, cfg.TelnyxBaseURL, cfg.SMSTimeout)
	if err != nil {
		slog.Error("failed to create messaging client", "error", err)
		os.Exit(1)
	}

	// --- Language Model Client ---
	llmClient, err := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
	if err != nil {
		slog.Error("failed to create language-model client", "error", err)
		os.Exit(1)
	}

	// --- Conversation Handler + Blast Dispatcher ---
	conv := conversation.NewHandler(db, llmClient, llmClient, smsClient, publisher)
	dispatcher := blast.NewDispatcher(db, smsClient, cfg.BlastWindow, cfg.BlastMessage)
	dispatcher.StartPeriodic(ctx, cfg.BlastInterval)

	// --- Webhook Server ---
	handler := webhook.NewHandler(conv)
	ready, err := webhook.Serve(ctx, cfg.WebhookPort, handler)
	if err != nil {
		slog.Error("failed to start webhook server", "error", err)
		os.Exit(1)
	}
	<-ready
	slog.Info("webhook server ready")

	// --- Health + Stats Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := publisher.Ping(r.Context()); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}
		if err := pgPool.Ping(r.Context()); err != nil {
			http.Error(w, "postgres unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := db.ReferralStats(r.Context())
		if err != nil {
			slog.Error("failed to load referral stats", "error", err)
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			slog.Error("failed to write stats response", "error", err)
		}
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel() // Stop the webhook server and background goroutines

		dispatcher.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		rdb.Close()
		pgPool.Close()
	}()

	slog.Info("referral assistant listening", "addr", addr, "webhook_port", cfg.WebhookPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("referral assistant stopped")
}
