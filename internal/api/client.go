// HTTP client for the operator-facing REST actions
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stygmatic/Argus/internal/ai"
	"github.com/stygmatic/Argus/internal/fleet"
)

// Client calls the server's request/response actions. All methods are
// safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the given base URL, e.g.
// "http://localhost:8000".
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError is the server's semantic failure payload. Handlers return
// it with a 200 status, so bodies are checked for it regardless of
// status code.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	var semantic apiError
	if json.Unmarshal(data, &semantic) == nil && semantic.Error != "" {
		return nil, fmt.Errorf("%s", semantic.Error)
	}
	return data, nil
}

// ApproveSuggestion approves a suggestion and returns the server's
// authoritative post-action entity.
func (c *Client) ApproveSuggestion(ctx context.Context, id string) (ai.Suggestion, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/ai/suggestions/"+url.PathEscape(id)+"/approve", nil)
	if err != nil {
		return ai.Suggestion{}, err
	}
	var sug ai.Suggestion
	if err := json.Unmarshal(data, &sug); err != nil {
		return ai.Suggestion{}, fmt.Errorf("decode suggestion: %w", err)
	}
	return sug, nil
}

// RejectSuggestion rejects a suggestion and returns the server's
// authoritative post-action entity.
func (c *Client) RejectSuggestion(ctx context.Context, id string) (ai.Suggestion, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/ai/suggestions/"+url.PathEscape(id)+"/reject", nil)
	if err != nil {
		return ai.Suggestion{}, err
	}
	var sug ai.Suggestion
	if err := json.Unmarshal(data, &sug); err != nil {
		return ai.Suggestion{}, fmt.Errorf("decode suggestion: %w", err)
	}
	return sug, nil
}

// GeneratePlan requests a mission plan for the given intent. A server
// error payload comes back as a plain error for the plan store to
// surface to the operator.
func (c *Client) GeneratePlan(ctx context.Context, intent ai.MissionIntent) (*ai.MissionPlan, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/ai/missions/plan", intent)
	if err != nil {
		return nil, err
	}
	var out struct {
		Plan *ai.MissionPlan `json:"plan"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if out.Plan == nil {
		return nil, fmt.Errorf("server returned no plan")
	}
	return out.Plan, nil
}

// ApprovePlan submits an approved plan for execution.
func (c *Client) ApprovePlan(ctx context.Context, plan ai.MissionPlan) error {
	body := struct {
		Plan ai.MissionPlan `json:"plan"`
	}{Plan: plan}
	_, err := c.do(ctx, http.MethodPost, "/api/ai/missions/plan/approve", body)
	return err
}

type tierBody struct {
	Tier fleet.AutonomyTier `json:"tier"`
}

// SetRobotTier persists one robot's autonomy tier.
func (c *Client) SetRobotTier(ctx context.Context, robotID string, tier fleet.AutonomyTier) error {
	_, err := c.do(ctx, http.MethodPut, "/api/autonomy/robots/"+url.PathEscape(robotID)+"/tier", tierBody{Tier: tier})
	return err
}

// SetFleetDefaultTier persists the fleet-wide default tier.
func (c *Client) SetFleetDefaultTier(ctx context.Context, tier fleet.AutonomyTier) error {
	_, err := c.do(ctx, http.MethodPut, "/api/autonomy/fleet/default-tier", tierBody{Tier: tier})
	return err
}

// TrailPoint is one archived position sample from the server-side
// trail history, distinct from the client-derived breadcrumb trail.
type TrailPoint struct {
	Time      string  `json:"time"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
}

// RobotTrail fetches the server-side trail history for one robot over
// the last N minutes.
func (c *Client) RobotTrail(ctx context.Context, robotID string, minutes int) ([]TrailPoint, error) {
	path := fmt.Sprintf("/api/robots/%s/trail?minutes=%d", url.PathEscape(robotID), minutes)
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Trail []TrailPoint `json:"trail"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode trail: %w", err)
	}
	return out.Trail, nil
}
