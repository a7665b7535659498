package evaluators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"matrixlead/internal/domain"
	"matrixlead/internal/services/scoring"
)

// Client is the evaluator facade: one HTTP request per signal type against the
// external evaluator service. A response that cannot be interpreted becomes
// the neutral default report; transport-level failures are returned as errors
// for the orchestrator to convert.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Evaluator tool paths, one per signal type.
var toolPaths = map[domain.SignalType]string{
	domain.SignalEmail:   "/tools/email_reputation",
	domain.SignalPhone:   "/tools/phone_check",
	domain.SignalName:    "/tools/name_check",
	domain.SignalCompany: "/tools/company_enrich",
	domain.SignalMessage: "/tools/intent",
}

func NewClient(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
}

// Evaluate posts the signal value to its evaluator and normalizes the
// response. The request carries a single field named after the signal type
// and inherits the caller's deadline.
func (c *Client) Evaluate(ctx context.Context, sig domain.SignalType, value string) (domain.SignalReport, error) {
	path, ok := toolPaths[sig]
	if !ok {
		return domain.SignalReport{}, fmt.Errorf("unknown signal type %q", sig)
	}

	payload, err := json.Marshal(map[string]string{string(sig): value})
	if err != nil {
		return domain.SignalReport{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.SignalReport{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SignalReport{}, fmt.Errorf("%s evaluator: %w", sig, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.SignalReport{}, fmt.Errorf("%s evaluator: unexpected status %d", sig, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SignalReport{}, fmt.Errorf("%s evaluator: read body: %w", sig, err)
	}

	return c.normalize(sig, value, body), nil
}

// normalize turns a raw evaluator body into a report. An unparseable body or
// a missing score field yields the neutral 0.5, never an error; a present but
// non-numeric score clamps to 0.
func (c *Client) normalize(sig domain.SignalType, value string, body []byte) domain.SignalReport {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		c.log.Warn("evaluator returned non-JSON body, using neutral default", "signal", sig, "error", err)
		fields = map[string]any{}
	}

	score := 0.5
	if raw, ok := fields["score"]; ok {
		score = scoring.SafeScore(raw)
	}
	delete(fields, "score")

	// Downstream keyword logic reads the raw message text off the report.
	if sig == domain.SignalMessage {
		fields["text"] = value
	}

	return domain.SignalReport{Score: score, Metadata: fields}
}
