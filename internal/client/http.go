// Package client implements the booking collaborator contract over HTTP,
// for deployments that embed the reservation workflow against a remote
// parking backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/booking"
	"parking-reservation-backend/internal/layout"
	"parking-reservation-backend/internal/reconcile"
)

// HTTPClient talks to a remote parking backend exposing the same API this
// repository serves.
type HTTPClient struct {
	cfg    *config.CollaboratorConfig
	client *http.Client
}

var _ booking.Client = (*HTTPClient)(nil)

// New creates an HTTP collaborator client from configuration.
func New(cfg *config.CollaboratorConfig) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// do performs one request and decodes the JSON response into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *HTTPClient) ListAreas(ctx context.Context) ([]booking.Area, error) {
	var areas []booking.Area
	if err := c.do(ctx, http.MethodGet, "/api/areas", nil, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

func (c *HTTPClient) ListSpots(ctx context.Context, areaID int64, vehicleClass string) ([]booking.Spot, error) {
	path := fmt.Sprintf("/api/areas/%d/spots", areaID)
	if vehicleClass != "" {
		path += "?vehicle_class=" + url.QueryEscape(vehicleClass)
	}
	var spots []booking.Spot
	if err := c.do(ctx, http.MethodGet, path, nil, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

func (c *HTTPClient) GetOccupancySnapshot(ctx context.Context, areaID int64) ([]reconcile.StatusRecord, error) {
	var records []reconcile.StatusRecord
	path := fmt.Sprintf("/api/areas/%d/occupancy", areaID)
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetCapacitySnapshot(ctx context.Context, areaID int64) ([]reconcile.CapacitySnapshot, error) {
	var caps []reconcile.CapacitySnapshot
	path := fmt.Sprintf("/api/areas/%d/capacity", areaID)
	if err := c.do(ctx, http.MethodGet, path, nil, &caps); err != nil {
		return nil, err
	}
	return caps, nil
}

// layoutResponse is the wire shape of the layout endpoint.
type layoutResponse struct {
	HasLayout    bool   `json:"hasLayout"`
	Markup       string `json:"markup"`
	SectionHints []struct {
		SectionName string  `json:"sectionName"`
		Mode        string  `json:"mode"`
		GridX       float64 `json:"gridX"`
		GridY       float64 `json:"gridY"`
	} `json:"sectionHints"`
}

func (c *HTTPClient) GetLayoutMarkup(ctx context.Context, areaID int64) (booking.LayoutMarkup, error) {
	var resp layoutResponse
	path := fmt.Sprintf("/api/areas/%d/layout", areaID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return booking.LayoutMarkup{}, err
	}

	out := booking.LayoutMarkup{HasLayout: resp.HasLayout, Markup: resp.Markup}
	for _, h := range resp.SectionHints {
		mode := layout.ModeSlotBased
		if h.Mode == "capacity_only" {
			mode = layout.ModeCapacityOnly
		}
		out.SectionHints = append(out.SectionHints, layout.SectionHint{
			SectionName: h.SectionName,
			Mode:        mode,
			GridX:       h.GridX,
			GridY:       h.GridY,
		})
	}
	return out, nil
}

func (c *HTTPClient) ListOwnActiveOrReservedBookings(ctx context.Context) ([]booking.Booking, error) {
	var bookings []booking.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/active", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *HTTPClient) ReserveSpot(ctx context.Context, vehicleID int64, spotID string, areaID int64) (booking.Result, error) {
	payload := map[string]any{
		"vehicleId": vehicleID,
		"spotId":    spotID,
		"areaId":    areaID,
	}
	var res booking.Result
	if err := c.do(ctx, http.MethodPost, "/api/reservations/spot", payload, &res); err != nil {
		return booking.Result{}, err
	}
	return res, nil
}

func (c *HTTPClient) ReserveCapacityZone(ctx context.Context, sectionName string, vehicleID, areaID int64) (booking.Result, error) {
	payload := map[string]any{
		"sectionName": sectionName,
		"vehicleId":   vehicleID,
		"areaId":      areaID,
	}
	var res booking.Result
	if err := c.do(ctx, http.MethodPost, "/api/reservations/capacity", payload, &res); err != nil {
		return booking.Result{}, err
	}
	return res, nil
}

func (c *HTTPClient) ListFrequentSpots(ctx context.Context, limit int) ([]booking.FrequentSpot, error) {
	var spots []booking.FrequentSpot
	path := "/api/spots/frequent?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}
