// Package classifier talks to the external NLP prediction service. The
// service is treated as unreliable: calls carry their own timeout and run
// behind a circuit breaker so a flapping collaborator cannot stall ticket
// submission.
package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/asten-tickets/triage-service/internal/config"
)

// Prediction is the classification result for a ticket.
type Prediction struct {
	PredictedCategory string              `json:"predicted_category"`
	Confidence        float64             `json:"confidence"`
	TopCategories     []CandidateCategory `json:"top_categories"`
	NeedsHumanReview  bool                `json:"needs_human_review"`
	Keywords          []string            `json:"keywords"`
}

// CandidateCategory is one entry of the ranked category list.
type CandidateCategory struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Feedback reports a human correction back to the model for retraining.
type Feedback struct {
	TicketID          string  `json:"ticket_id"`
	PredictedCategory string  `json:"predicted_category"`
	ActualCategory    string  `json:"actual_category"`
	Confidence        float64 `json:"confidence"`
}

// ModelInfo describes the currently deployed model.
type ModelInfo struct {
	TrainingCount int      `json:"training_count"`
	LastTraining  string   `json:"last_training"`
	Categories    []string `json:"categories"`
	TotalTickets  int      `json:"total_tickets"`
}

// Client is the classification collaborator contract.
type Client interface {
	Predict(ctx context.Context, title, description string) (*Prediction, error)
	SendFeedback(ctx context.Context, feedback Feedback) error
	ModelInfo(ctx context.Context) (*ModelInfo, error)
}

type httpClient struct {
	rest    *resty.Client
	breaker *gobreaker.CircuitBreaker[*Prediction]
	logger  *zap.Logger
}

// NewHTTPClient builds the resty-backed client from configuration.
func NewHTTPClient(cfg config.ClassifierConfig, logger *zap.Logger) Client {
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout())

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	resetTimeout := time.Duration(cfg.BreakerResetSec) * time.Second
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*Prediction](gobreaker.Settings{
		Name:    "classifier",
		Timeout: resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("classifier breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &httpClient{rest: rest, breaker: breaker, logger: logger}
}

type predictRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (c *httpClient) Predict(ctx context.Context, title, description string) (*Prediction, error) {
	return c.breaker.Execute(func() (*Prediction, error) {
		var prediction Prediction
		resp, err := c.rest.R().
			SetContext(ctx).
			SetBody(predictRequest{Title: title, Description: description}).
			SetResult(&prediction).
			Post("/predict")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("classifier returned %s", resp.Status())
		}
		return &prediction, nil
	})
}

// SendFeedback posts a correction to the model. Callers treat this as
// best-effort; an error here never blocks the correction itself.
func (c *httpClient) SendFeedback(ctx context.Context, feedback Feedback) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(feedback).
		Post("/feedback")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("feedback endpoint returned %s", resp.Status())
	}
	return nil
}

func (c *httpClient) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	var info ModelInfo
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&info).
		Get("/model-info")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model-info endpoint returned %s", resp.Status())
	}
	return &info, nil
}
