package evaluators

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixlead/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvaluateParsesReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tools/email_reputation", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jane@acme.example", req["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"score":             0.87,
			"type":              "business",
			"is_likely_genuine": true,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	report, err := client.Evaluate(context.Background(), domain.SignalEmail, "jane@acme.example")
	require.NoError(t, err)

	assert.InDelta(t, 0.87, report.Score, 1e-9)
	assert.Equal(t, "business", report.Metadata["type"])
	assert.Equal(t, true, report.Metadata["is_likely_genuine"])
	assert.NotContains(t, report.Metadata, "score")
}

func TestEvaluateScoreNormalization(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantScore float64
	}{
		{"missing score defaults to neutral", `{"type":"personal"}`, 0.5},
		{"non-numeric score clamps to zero", `{"score":"not a number"}`, 0.0},
		{"numeric string score parses", `{"score":"0.8"}`, 0.8},
		{"out of range score clamps", `{"score":7}`, 1.0},
		{"non-JSON body defaults to neutral", `<html>gateway error</html>`, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, testLogger())
			report, err := client.Evaluate(context.Background(), domain.SignalPhone, "+15551234567")
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, report.Score, 1e-9)
		})
	}
}

func TestEvaluateMessageCarriesRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"score": 0.6, "intent": "pricing"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	report, err := client.Evaluate(context.Background(), domain.SignalMessage, "need pricing ASAP")
	require.NoError(t, err)

	assert.Equal(t, "need pricing ASAP", report.Metadata["text"])
	assert.Equal(t, "pricing", report.Metadata["intent"])
}

func TestEvaluateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	_, err := client.Evaluate(context.Background(), domain.SignalCompany, "Acme")
	assert.Error(t, err)
}

func TestEvaluateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, testLogger())
	_, err := client.Evaluate(ctx, domain.SignalName, "Jane Doe")
	assert.Error(t, err)
}

func TestEvaluateUnknownSignal(t *testing.T) {
	client := NewClient("http://localhost:0", testLogger())
	_, err := client.Evaluate(context.Background(), domain.SignalType("fax"), "x")
	assert.Error(t, err)
}
