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

// Package blast sends the templated referral request to every tenant who
// has not been contacted within the eligibility window. Sends are
// sequential; one tenant's failure never stops the rest.
package blast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cornerstone/referral/internal/models"
)

// Store is the persistence surface the dispatcher needs.
// Implemented by *store.Store.
type Store interface {
	ListBlastEligible(ctx context.Context, window time.Duration) ([]models.Tenant, error)
	UpdateTenantStatus(ctx context.Context, phone, status string) error
	AppendTenantMessage(ctx context.Context, phone, message, role string) error
}

// Sender delivers a single outbound message. Implemented by *sms.Client.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// Report aggregates the outcome of one blast run.
type Report struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Dispatcher runs referral blasts.
type Dispatcher struct {
	store   Store
	sender  Sender
	window  time.Duration
	message string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a blast dispatcher. window is the default
// eligibility window used by the periodic scheduler.
func NewDispatcher(store Store, sender Sender, window time.Duration, message string) *Dispatcher {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &Dispatcher{
		store:   store,
		sender:  sender,
		window:  window,
		message: message,
	}
}

// Run sends the blast message to every tenant eligible under the given
// window (zero means the dispatcher's default). Each eligible tenant is
// attempted exactly once; every tenant is marked contacted and gets a log
// entry regardless of their individual send outcome.
func (d *Dispatcher) Run(ctx context.Context, window time.Duration) (Report, error) {
	if window <= 0 {
		window = d.window
	}

	tenants, err := d.store.ListBlastEligible(ctx, window)
	if err != nil {
		return Report{}, fmt.Errorf("list eligible tenants: %w", err)
	}
	if len(tenants) == 0 {
		slog.Info("no tenants eligible for referral blast", "window", window)
		return Report{}, nil
	}

	report := Report{Total: len(tenants)}
	for _, tenant := range tenants {
		if err := d.sender.Send(ctx, tenant.Phone, d.message); err != nil {
			slog.Error("blast send failed", "phone", tenant.Phone, "error", err)
			report.Failed++
		} else {
			report.Successful++
		}

		// Status and log updates happen whether or not the send worked,
		// so the tenant is not re-blasted on the next run.
		if err := d.store.UpdateTenantStatus(ctx, tenant.Phone, models.TenantStatusContacted); err != nil {
			slog.Error("failed to mark tenant contacted", "phone", tenant.Phone, "error", err)
		}
		if err := d.store.AppendTenantMessage(ctx, tenant.Phone, d.message, "assistant"); err != nil {
			slog.Error("failed to log blast message", "phone", tenant.Phone, "error", err)
		}
	}

	slog.Info("referral blast complete",
		"successful", report.Successful,
		"failed", report.Failed,
		"total", report.Total,
	)
	return report, nil
}

// StartPeriodic runs the blast at the given interval until the context is
// cancelled or Stop is called. An interval of zero disables scheduling.
func (d *Dispatcher) StartPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		slog.Info("periodic blast scheduler started", "interval", interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := d.Run(ctx, 0); err != nil {
					slog.Error("scheduled blast failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the periodic scheduler and waits for it to exit.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}
