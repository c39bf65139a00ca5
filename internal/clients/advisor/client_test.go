package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvise(t *testing.T) {
	var captured chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "## Advice\nPrune affected leaves."}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	advice, err := c.Advise(context.Background(), "Powdery Mildew", "Clear, 22.0°C")
	require.NoError(t, err)
	assert.Equal(t, "## Advice\nPrune affected leaves.", advice)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "Powdery Mildew")
	assert.Contains(t, captured.Messages[0].Content, "Clear, 22.0°C")
}

func TestAdvise_WeatherAbsentIsStatedInPrompt(t *testing.T) {
	var captured chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", "m").Advise(context.Background(), "Rust", "")
	require.NoError(t, err)
	assert.Contains(t, captured.Messages[0].Content, "Weather data unavailable")
}

func TestAdvise_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", "m").Advise(context.Background(), "Rust", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestAdvise_ContentPolicyRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "content policy"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", "m").Advise(context.Background(), "Rust", "Humid, 30.0°C")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
