// Package moderation gates new project submissions through an external
// moderation service. The call sits behind a circuit breaker and fails
// open: an unconfigured endpoint, a tripped breaker, or a transport
// error all approve the submission, so moderation can never take the
// create flow down with it.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kerryjj/community-votes-action/internal/logging"
	"github.com/kerryjj/community-votes-action/internal/models"
)

type Result struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

type Checker struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New builds a Checker for the given endpoint. An empty url disables
// checking entirely.
func New(url string) *Checker {
	return &Checker{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "ModerationService",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Check submits the project for review. Only an explicit rejection from
// the service blocks the submission.
func (c *Checker) Check(ctx context.Context, p *models.Project) Result {
	if c.url == "" {
		return Result{Approved: true}
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.submit(ctx, p)
	})
	if err != nil {
		logging.Logger.WithField("error", err).Warn("moderation check skipped")
		return Result{Approved: true}
	}

	return res.(Result)
}

func (c *Checker) submit(ctx context.Context, p *models.Project) (Result, error) {
	body, err := json.Marshal(map[string]string{
		"title":       p.Title,
		"description": p.Description,
		"location":    p.Location,
		"type":        string(p.Type),
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("moderation service returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, err
	}

	return result, nil
}
