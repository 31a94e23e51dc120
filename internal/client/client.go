package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/phdi/tcr/internal/domain/reference"
	"github.com/phdi/tcr/internal/platform/fhir"
)

// APIError is a non-2xx answer from the server. Body is the raw response,
// an OperationOutcome for stamping or {"error": ...} for value set lookups.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tcr-server returned %d: %s", e.StatusCode, e.Body)
}

// Client calls a running tcr-server.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, logger: logger}
}

type stampRequest struct {
	Bundle *fhir.Bundle `json:"bundle"`
}

type stampResponse struct {
	ExtendedBundle *fhir.Bundle `json:"extended_bundle"`
}

// StampBundle posts b to /stamp-condition-extensions and returns the stamped
// bundle.
func (c *Client) StampBundle(ctx context.Context, b *fhir.Bundle) (*fhir.Bundle, error) {
	var out stampResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(stampRequest{Bundle: b}).
		SetResult(&out).
		Post("/stamp-condition-extensions")
	if err != nil {
		return nil, fmt.Errorf("stamp bundle: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if out.ExtendedBundle == nil {
		return nil, fmt.Errorf("stamp bundle: response has no extended_bundle")
	}
	c.logger.Debug().Dur("took", resp.Time()).Msg("bundle stamped")
	return out.ExtendedBundle, nil
}

// ValueSets fetches the reportable code set for a condition. An empty filter
// returns every value set type.
func (c *Client) ValueSets(ctx context.Context, conditionCode, filter string) (reference.ReportableCodeSet, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("condition_code", conditionCode)
	if filter != "" {
		req.SetQueryParam("filter_clinical_services", filter)
	}

	var out reference.ReportableCodeSet
	resp, err := req.SetResult(&out).Get("/get-value-sets")
	if err != nil {
		return nil, fmt.Errorf("get value sets: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return out, nil
}
