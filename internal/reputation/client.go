package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultBaseURL is the production api-aries endpoint.
	DefaultBaseURL = "https://api.api-aries.online"

	emailCheckPath   = "/v1/checkers/proxy/email/"
	headerAPIToken   = "APITOKEN"
	headerTokenType  = "Type"
	maxResponseBytes = 64 << 10
)

// remoteResponse is the JSON body of the email checker endpoint.
type remoteResponse struct {
	Disposable string    `json:"disposable"`
	ErrorCode  errorCode `json:"error_code"`
	Message    string    `json:"message"`
}

// errorCode accepts both "102" and 102; the API has used both forms.
type errorCode struct {
	Value   string
	Present bool
}

func (c *errorCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	c.Present = true
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Value)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	c.Value = n.String()
	return nil
}

// lookup performs exactly one GET against the checker endpoint. It never retries.
func (c *Checker) lookup(ctx context.Context, addr, token, tokenType string) (*remoteResponse, error) {
	ctx, span := c.tracer.Start(ctx, "reputation.lookup")
	defer span.End()

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveLookup(start)
		}
	}()

	endpoint := c.baseURL + emailCheckPath + "?" + url.Values{"email": {addr}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &lookupError{Category: failureTransport, Message: "build request", Underlying: err}
	}
	req.Header.Set(headerAPIToken, token)
	if tokenType != "" {
		req.Header.Set(headerTokenType, tokenType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &lookupError{Category: failureTransport, Message: "request failed", Underlying: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		span.SetStatus(codes.Error, "unexpected status")
		return nil, &lookupError{Category: failureTransport, Message: "unexpected status", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		span.RecordError(err)
		return nil, &lookupError{Category: failureTransport, Message: "read body", StatusCode: resp.StatusCode, Underlying: err}
	}
	if len(body) > maxResponseBytes {
		return nil, &lookupError{Category: failureBadData, Message: "response too large", StatusCode: resp.StatusCode}
	}

	parsed, err := parseResponse(body)
	if err != nil {
		span.SetStatus(codes.Error, "malformed response")
		return nil, err
	}
	return parsed, nil
}

// parseResponse requires a JSON object; arrays, scalars and null are malformed.
func parseResponse(body []byte) (*remoteResponse, error) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, &lookupError{Category: failureBadData, Message: "response is not a JSON object"}
	}
	var parsed remoteResponse
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, &lookupError{Category: failureBadData, Message: "decode response", Underlying: err}
	}
	return &parsed, nil
}
