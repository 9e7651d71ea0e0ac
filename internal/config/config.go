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

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBlastMessage is the templated referral request sent to eligible
// tenants when no override is configured.
const DefaultBlastMessage = `Hi! This is the AI assistant from Cornerstone Real Estate.
We're looking to help more students find great off-campus housing like yours!
Do you know anyone who might be looking for a place to live? If so, I'd love to get their contact info and help them find something perfect.
Just reply with their name and phone number, or let me know if you don't have any referrals right now. Thanks! `

// Config holds all configuration for the referral service.
type Config struct {
	// Telnyx messaging
	TelnyxAPIKey  string
	TelnyxBaseURL string
	FromNumber    string
	SMSTimeout    time.Duration

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string
	LLMTimeout   time.Duration

	// Postgres
	DatabaseURL      string
	DatabasePassword string

	// Redis
	RedisURL   string
	LeadsQueue string

	// Referral blast
	BlastWindow   time.Duration
	BlastInterval time.Duration
	BlastMessage  string

	// Server
	Port        int
	WebhookPort int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Telnyx struct {
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"`
		FromNumber string `yaml:"from_number"`
	} `yaml:"telnyx"`
	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
	Database struct {
		URL      string `yaml:"url"`
		Password string `yaml:"password"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Leads string `yaml:"leads"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	Blast struct {
		Message string `yaml:"message"`
	} `yaml:"blast"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings. Missing required credentials
// are a hard error — collaborators must never be constructed half-configured.
func Load() (*Config, error) {
	cfg, err := build()
	if err != nil {
		return nil, err
	}

	var missing []string
	if cfg.TelnyxAPIKey == "" {
		missing = append(missing, "TELNYX_API_KEY")
	}
	if cfg.FromNumber == "" {
		missing = append(missing, "TELNYX_PHONE_NUMBER")
	}
	if cfg.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// LoadDatabase reads the same configuration but requires only the database
// settings. One-shot commands that never talk to the messaging or
// language-model APIs use this so they run without those credentials.
func LoadDatabase() (*Config, error) {
	cfg, err := build()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing required configuration: DATABASE_URL")
	}
	return cfg, nil
}

func build() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	var raw rawConfig
	data, err := os.ReadFile(configPath)
	if err == nil {
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}
	// A missing config file is fine — everything can come from the environment.

	cfg := &Config{
		TelnyxAPIKey:     firstNonEmpty(raw.Telnyx.APIKey, os.Getenv("TELNYX_API_KEY")),
		TelnyxBaseURL:    firstNonEmpty(raw.Telnyx.BaseURL, envOrDefault("TELNYX_BASE_URL", "https://api.telnyx.com/v2")),
		FromNumber:       firstNonEmpty(raw.Telnyx.FromNumber, os.Getenv("TELNYX_PHONE_NUMBER")),
		SMSTimeout:       envOrDefaultDuration("SMS_TIMEOUT", 10*time.Second),
		OpenAIAPIKey:     firstNonEmpty(raw.OpenAI.APIKey, os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:      firstNonEmpty(raw.OpenAI.Model, envOrDefault("OPENAI_MODEL", "gpt-4o-mini")),
		LLMTimeout:       envOrDefaultDuration("LLM_TIMEOUT", 30*time.Second),
		DatabaseURL:      firstNonEmpty(raw.Database.URL, os.Getenv("DATABASE_URL")),
		DatabasePassword: firstNonEmpty(raw.Database.Password, os.Getenv("DATABASE_PASSWORD")),
		RedisURL:         firstNonEmpty(raw.Redis.URL, envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		LeadsQueue:       firstNonEmpty(raw.Redis.Queues.Leads, envOrDefault("LEADS_QUEUE", "leads")),
		BlastWindow:      envOrDefaultDuration("BLAST_WINDOW", 720*time.Hour),
		BlastInterval:    envOrDefaultDuration("BLAST_INTERVAL", 0),
		BlastMessage:     firstNonEmpty(raw.Blast.Message, os.Getenv("BLAST_MESSAGE"), DefaultBlastMessage),
		Port:             envOrDefaultInt("PORT", 8080),
		WebhookPort:      envOrDefaultInt("WEBHOOK_PORT", 8081),
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
