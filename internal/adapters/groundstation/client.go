// Package groundstation ingests telemetry from an external ground-station
// HTTP API and normalises it into orbita snapshots.
package groundstation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/ports/secondary"
)

// RawReading is the provider's proprietary telemetry document.
// Missing fields take the defaults applied by MapExternal.
type RawReading struct {
	BatteryVolts *float64 `json:"batt_v"`
	TempC        *float64 `json:"temp_c"`
	AttQ1        *float64 `json:"att_q1"`
	AttQ2        *float64 `json:"att_q2"`
	AttQ3        *float64 `json:"att_q3"`
	LatencyMs    *float64 `json:"latency_ms"`
	Mode         string   `json:"mode"`
}

// Defaults applied to missing RawReading fields.
const (
	DefaultTempC     = 20.0
	DefaultLatencyMs = 100.0
	VoltsToPercent   = 10.0
	ModeNominal      = "NOMINAL"
)

// MapExternal converts a provider reading into a bounded Snapshot.
// Battery is volts scaled by VoltsToPercent; the vehicle is stable only
// when the provider reports NOMINAL mode.
func MapExternal(raw RawReading) telemetry.Snapshot {
	return telemetry.Normalize(telemetry.Snapshot{
		BatteryLevel:     valueOr(raw.BatteryVolts, 0) * VoltsToPercent,
		ThermalState:     valueOr(raw.TempC, DefaultTempC),
		OrientationRoll:  valueOr(raw.AttQ1, 0),
		OrientationPitch: valueOr(raw.AttQ2, 0),
		OrientationYaw:   valueOr(raw.AttQ3, 0),
		SignalLatency:    valueOr(raw.LatencyMs, DefaultLatencyMs),
		IsStable:         raw.Mode == ModeNominal,
	})
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Client implements secondary.TelemetrySource over HTTP.
// With no URL configured it reports "no data" so callers fall back to
// simulation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	warnOnce   sync.Once
}

// NewClient creates a ground-station client. An empty baseURL yields a
// client that never has data.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch returns the latest reading for missionID.
// 404 and 204 mean "nothing new" rather than failure.
func (c *Client) Fetch(ctx context.Context, missionID string, class telemetry.VehicleClass) (telemetry.Snapshot, bool, error) {
	if c.baseURL == "" {
		c.warnOnce.Do(func() {
			c.logger.Warn("real telemetry requested but no ground station configured, using simulation",
				"mission_id", missionID, "vehicle_class", class)
		})
		return telemetry.Snapshot{}, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(missionID), nil)
	if err != nil {
		return telemetry.Snapshot{}, false, fmt.Errorf("failed to build ground station request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return telemetry.Snapshot{}, false, fmt.Errorf("failed to reach ground station: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return telemetry.Snapshot{}, false, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return telemetry.Snapshot{}, false, fmt.Errorf("ground station returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var raw RawReading
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return telemetry.Snapshot{}, false, fmt.Errorf("failed to decode ground station reading: %w", err)
	}

	return MapExternal(raw), true, nil
}

var _ secondary.TelemetrySource = (*Client)(nil)
