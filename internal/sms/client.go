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

// Package sms sends outbound text messages through the Telnyx messaging API.
// Delivery is best-effort: the provider offers no stronger guarantee and
// this service does not retry on its behalf.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Client sends SMS messages via the Telnyx v2 REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	fromNumber string
	timeout    time.Duration
}

// Report aggregates the outcome of a sequential bulk send.
type Report struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// NewClient creates a Telnyx messaging client. The API key and sender
// number are required; construction fails without them.
func NewClient(ctx context.Context, apiKey, fromNumber, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("telnyx API key is required")
	}
	if fromNumber == "" {
		return nil, fmt.Errorf("telnyx sender phone number is required")
	}
	if baseURL == "" {
		baseURL = "https://api.telnyx.com/v2"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})
	return &Client{
		httpClient: oauth2.NewClient(ctx, ts),
		baseURL:    baseURL,
		fromNumber: fromNumber,
		timeout:    timeout,
	}, nil
}

// sendRequest is the Telnyx message creation payload.
type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// sendResponse is the subset of the Telnyx response we care about.
type sendResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Send delivers a single message to one recipient.
func (c *Client) Send(ctx context.Context, to, text string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(sendRequest{From: c.fromNumber, To: to, Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telnyx API returned HTTP %d: %s", resp.StatusCode, detail)
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && parsed.Data.ID != "" {
		slog.Info("sms sent", "to", to, "message_id", parsed.Data.ID)
	} else {
		slog.Info("sms sent", "to", to)
	}
	return nil
}

// SendBulk delivers the same message to every number, one at a time.
// A failed send for one recipient never stops the rest; failures are
// counted in the report, not returned as errors.
func (c *Client) SendBulk(ctx context.Context, numbers []string, text string) Report {
	report := Report{Total: len(numbers)}
	for _, number := range numbers {
		if err := c.Send(ctx, number, text); err != nil {
			slog.Error("bulk send failed", "to", number, "error", err)
			report.Failed++
			continue
		}
		report.Successful++
	}
	return report
}
