package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"tower-takeoff/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Request is a takeoff request as written in a request file or sent on the wire.
type Request struct {
	Filters domain.TowerFilters    `json:"filters" yaml:"filters"`
	Parts   []domain.PartSelection `json:"parts" yaml:"parts"`
}

// LoadRequestFile reads a YAML request file:
//
//	filters: {tipo: A1, fabricante: ACME}
//	parts:
//	  - {part: BSUP, quantity: 2}
func LoadRequestFile(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request file: %w", err)
	}
	defer f.Close()
	return DecodeRequest(f)
}

func DecodeRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// Response mirrors the calculate endpoint envelope.
type Response struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Count   int              `json:"count"`
	Results []map[string]any `json:"results"`
	Totals  domain.Totals    `json:"totals"`
}

// TakeoffClient calls a tower-takeoff server.
type TakeoffClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewTakeoffClient(baseURL string, timeout time.Duration, logger *zap.Logger) *TakeoffClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &TakeoffClient{httpClient: client, logger: logger}
}

// Calculate posts req to /api/calculate. Server-side rejections come back as errors
// carrying the server's message.
func (c *TakeoffClient) Calculate(ctx context.Context, req *Request) (*Response, error) {
	var ok, fail Response
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&ok).
		SetError(&fail).
		Post("/api/calculate")
	if err != nil {
		return nil, fmt.Errorf("failed to call takeoff API: %w", err)
	}
	if resp.IsError() {
		c.logger.Debug("takeoff API rejected request",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", fail.Message),
		)
		return nil, fmt.Errorf("takeoff API error: %s (status: %d)", fail.Message, resp.StatusCode())
	}
	return &ok, nil
}
