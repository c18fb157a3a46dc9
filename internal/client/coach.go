package client

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

// PlanView is a profile and its plan as returned by the plan endpoints
type PlanView struct {
	UserData    *domain.UserProfile `json:"userData"`
	FitnessPlan *domain.FitnessPlan `json:"fitnessPlan"`
}

// Narration is the spoken text of one plan section
type Narration struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

// Archive is the location of an uploaded PDF
type Archive struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// CreateSession opens a new anonymous session
func (c *Client) CreateSession(ctx context.Context) (*service.Session, error) {
	var session service.Session
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RenewSession issues a fresh token for the current session
func (c *Client) RenewSession(ctx context.Context) (*service.Session, error) {
	var session service.Session
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/renew", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GeneratePlan submits a profile and returns the new plan
func (c *Client) GeneratePlan(ctx context.Context, profile domain.UserProfile) (*PlanView, error) {
	var view PlanView
	if err := c.do(ctx, http.MethodPost, "/v1/plan/generate", profile, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// RegeneratePlan requests a new plan for the stored profile
func (c *Client) RegeneratePlan(ctx context.Context) (*PlanView, error) {
	var view PlanView
	if err := c.do(ctx, http.MethodPost, "/v1/plan/regenerate", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Summary returns the plan view with stat cards and the daily quote
func (c *Client) Summary(ctx context.Context) (*service.PlanSummary, error) {
	var summary service.PlanSummary
	if err := c.do(ctx, http.MethodGet, "/v1/plan/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ClearPlan drops the current profile and plan
func (c *Client) ClearPlan(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/plan", nil, nil)
}

// Narration returns the narration text for a section (workout or diet)
func (c *Client) Narration(ctx context.Context, section string) (*Narration, error) {
	var n Narration
	path := "/v1/plan/narration?section=" + url.QueryEscape(section)
	if err := c.do(ctx, http.MethodGet, path, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DownloadPDF returns the exported plan and its filename
func (c *Client) DownloadPDF(ctx context.Context) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/plan/export", nil)
	if err != nil {
		return nil, "", err
	}
	data, resp, err := c.send(req)
	if err != nil {
		return nil, "", err
	}

	filename := "Fitness_Plan.pdf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return data, filename, nil
}

// ArchivePDF uploads the exported plan server-side and returns its URL
func (c *Client) ArchivePDF(ctx context.Context) (*Archive, error) {
	var a Archive
	if err := c.do(ctx, http.MethodPost, "/v1/plan/export", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SavedPlans lists the saved-plan history, oldest first
func (c *Client) SavedPlans(ctx context.Context) ([]domain.SavedPlanEntry, error) {
	var plans []domain.SavedPlanEntry
	if err := c.do(ctx, http.MethodGet, "/v1/saved-plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SaveCurrentPlan appends the current plan to the history
func (c *Client) SaveCurrentPlan(ctx context.Context) (*domain.SavedPlanEntry, error) {
	var entry domain.SavedPlanEntry
	if err := c.do(ctx, http.MethodPost, "/v1/saved-plans", nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteSavedPlan removes the saved plan at index
func (c *Client) DeleteSavedPlan(ctx context.Context, index int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/saved-plans/%d", index), nil, nil)
}

// LoadSavedPlan makes the saved plan at index current
func (c *Client) LoadSavedPlan(ctx context.Context, index int) (*PlanView, error) {
	var view PlanView
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/saved-plans/%d/load", index), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ToggleTheme flips dark mode and returns the new value
func (c *Client) ToggleTheme(ctx context.Context) (bool, error) {
	var out struct {
		DarkMode bool `json:"darkMode"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/theme/toggle", nil, &out); err != nil {
		return false, err
	}
	return out.DarkMode, nil
}

// Quote returns the daily motivational quote
func (c *Client) Quote(ctx context.Context, refresh bool) (string, error) {
	var out struct {
		Quote string `json:"quote"`
	}
	path := "/v1/quote"
	if refresh {
		path += "?refresh=true"
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Quote, nil
}

// State returns the raw persisted blob of the session
func (c *Client) State(ctx context.Context) (*domain.PersistedState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/state", nil)
	if err != nil {
		return nil, err
	}
	data, _, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var blob domain.PersistedState
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &blob, nil
}
