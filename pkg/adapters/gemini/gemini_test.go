package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/gmboard/pkg/adapters/gemini"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGemini(t *testing.T, status int, answer string) (*httptest.Server, *string) {
	t.Helper()
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": answer}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := gemini.New(context.Background(), gemini.Config{})
	assert.ErrorIs(t, err, gemini.ErrMissingAPIKey)
}

func TestGenerate(t *testing.T) {
	srv, body := fakeGemini(t, http.StatusOK, "```json\n{\"type\":\"GM_BRIEF\",\"scene\":\"Intro\",\"bullets\":[\"b\"],\"sources\":[\"f\"]}\n```")
	gen, err := gemini.New(context.Background(), gemini.Config{APIKey: "test", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := gen.Generate(context.Background(), domain.Request{
		Corpus: []domain.Document{{Name: "05_steps.md", Content: "## STEP Intro"}},
		Query:  "Quick brief",
		Intent: domain.IntentSceneBrief,
	})
	require.NoError(t, err)
	assert.Equal(t, &domain.SceneBrief{Scene: "Intro", Bullets: []string{"b"}, Sources: []string{"f"}}, resp)

	assert.Contains(t, *body, "application/json")
	assert.Contains(t, *body, "05_steps.md")
	assert.Contains(t, *body, "Game Master Assistant")
}

func TestGenerate_Failures(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusInternalServerError, "")
	gen, err := gemini.New(context.Background(), gemini.Config{APIKey: "test", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), domain.Request{Intent: domain.IntentTurn})
	assert.ErrorIs(t, err, domain.ErrGeneration)

	srv, _ = fakeGemini(t, http.StatusOK, `{"type":"HOROSCOPE"}`)
	gen, err = gemini.New(context.Background(), gemini.Config{APIKey: "test", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), domain.Request{Intent: domain.IntentTurn})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestNew_Temperature(t *testing.T) {
	answer := `{"type":"COMPUTER_MESSAGE","bullets":["ok"],"sources":[]}`
	zero := float32(0)

	tests := []struct {
		name        string
		temperature *float32
		want        float64
	}{
		{"default", nil, 0.4},
		{"explicit zero", &zero, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, body := fakeGemini(t, http.StatusOK, answer)
			gen, err := gemini.New(context.Background(), gemini.Config{APIKey: "test", BaseURL: srv.URL, Temperature: tt.temperature})
			require.NoError(t, err)
			_, err = gen.Generate(context.Background(), domain.Request{Intent: domain.IntentTurn})
			require.NoError(t, err)

			var sent struct {
				GenerationConfig struct {
					Temperature *float64 `json:"temperature"`
				} `json:"generationConfig"`
			}
			require.NoError(t, json.Unmarshal([]byte(*body), &sent))
			require.NotNil(t, sent.GenerationConfig.Temperature, "temperature is always sent")
			assert.InDelta(t, tt.want, *sent.GenerationConfig.Temperature, 1e-6)
		})
	}
}
