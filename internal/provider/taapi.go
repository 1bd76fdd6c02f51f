package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"candlewatch/internal/analysis"
	"candlewatch/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const taapiBaseURL = "https://api.taapi.io"

// TaapiClient issues one indicator request at a time. Rate limiting is
// owned by the orchestrator, which gates every call; this client only
// does transport and decoding.
type TaapiClient struct {
	tracer  trace.Tracer
	client  *http.Client
	baseURL string
	secret  string
}

func NewTaapiClient(tracer trace.Tracer, secret string) *TaapiClient {
	return &TaapiClient{
		tracer:  tracer,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: taapiBaseURL,
		secret:  secret,
	}
}

func (c *TaapiClient) FetchIndicator(ctx context.Context, req analysis.IndicatorRequest) (domain.IndicatorPayload, error) {
	ctx, span := c.tracer.Start(ctx, "taapi.fetch-indicator")
	defer span.End()

	params := url.Values{
		"secret":   {c.secret},
		"exchange": {req.Exchange},
		"symbol":   {req.Pair},
		"interval": {req.Interval},
	}
	for key, value := range req.Params {
		params.Set(key, fmt.Sprintf("%v", value))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+req.Indicator+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", req.Indicator, domain.ErrRateLimitExceeded)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var payload domain.IndicatorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Indicator, err)
	}
	return payload, nil
}
