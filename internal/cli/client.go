package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentalempire/internal/game"
	"rentalempire/internal/notify"
)

// APIError is a non-2xx response from the game server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Healthy(ctx context.Context) (bool, error) {
	var out struct {
		OK      bool `json:"ok"`
		Running bool `json:"running"`
	}
	if err := c.jsonRequest(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return false, err
	}
	return out.Running, nil
}

func (c *Client) Ledger(ctx context.Context) (game.LedgerView, error) {
	var out game.LedgerView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/ledger", nil, &out)
	return out, err
}

func (c *Client) Assets(ctx context.Context) (game.AssetsView, error) {
	var out game.AssetsView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/assets", nil, &out)
	return out, err
}

func (c *Client) Upgrades(ctx context.Context) ([]game.Upgrade, error) {
	var out struct {
		Upgrades []game.Upgrade `json:"upgrades"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/upgrades", nil, &out)
	return out.Upgrades, err
}

func (c *Client) Market(ctx context.Context) (game.MarketView, error) {
	var out game.MarketView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market", nil, &out)
	return out, err
}

func (c *Client) Achievements(ctx context.Context) ([]game.Achievement, error) {
	var out struct {
		Achievements []game.Achievement `json:"achievements"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/achievements", nil, &out)
	return out.Achievements, err
}

func (c *Client) Tiers(ctx context.Context) ([]game.TierView, error) {
	var out struct {
		Tiers []game.TierView `json:"tiers"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/tiers", nil, &out)
	return out.Tiers, err
}

func (c *Client) Notifications(ctx context.Context, limit int) ([]notify.Notification, error) {
	var out struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	path := "/v1/notifications?limit=" + strconv.Itoa(limit)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Notifications, err
}

func (c *Client) BuyAsset(ctx context.Context, typeID string) (game.PurchaseResult, error) {
	var out game.PurchaseResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/assets/"+url.PathEscape(typeID)+"/buy", nil, &out)
	return out, err
}

func (c *Client) SellAsset(ctx context.Context, typeID string) (game.SaleResult, error) {
	var out game.SaleResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/assets/"+url.PathEscape(typeID)+"/sell", nil, &out)
	return out, err
}

func (c *Client) LevelUpAsset(ctx context.Context, typeID string) (game.PurchaseResult, error) {
	var out game.PurchaseResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/assets/"+url.PathEscape(typeID)+"/level", nil, &out)
	return out, err
}

func (c *Client) BuyUpgrade(ctx context.Context, id string) (game.UpgradeResult, error) {
	var out game.UpgradeResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/upgrades/"+url.PathEscape(id)+"/buy", nil, &out)
	return out, err
}

func (c *Client) TriggerEvent(ctx context.Context, id string) (game.MarketEvent, error) {
	var out game.MarketEvent
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/market/"+url.PathEscape(id)+"/trigger", nil, &out)
	return out, err
}

func (c *Client) Start(ctx context.Context) (game.LedgerView, error) {
	var out game.LedgerView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/start", nil, &out)
	return out, err
}

func (c *Client) Stop(ctx context.Context) (game.LedgerView, error) {
	var out game.LedgerView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/stop", nil, &out)
	return out, err
}

func (c *Client) Checkpoint(ctx context.Context) (time.Time, error) {
	var out struct {
		SavedAt time.Time `json:"saved_at"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/checkpoint", nil, &out)
	return out.SavedAt, err
}

func (c *Client) Reset(ctx context.Context) (game.LedgerView, error) {
	var out game.LedgerView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/reset", map[string]any{"confirm": true}, &out)
	return out, err
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
