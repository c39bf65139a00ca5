// Package weather wraps the OpenWeatherMap current-conditions API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"plantcare-be/internal/models"
)

// currentResponse mirrors the fields we use from the OpenWeatherMap
// /data/2.5/weather payload.
type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Dt int64 `json:"dt"`
}

// Client fetches current conditions for a city.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New constructs a weather client. The API key comes from configuration,
// which has already verified it is present.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Current returns the observed conditions for city in metric units.
func (c *Client) Current(ctx context.Context, city string) (models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.APIKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("call weather api: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.WeatherSnapshot{}, fmt.Errorf("unknown city %q", city)
	default:
		return models.WeatherSnapshot{}, fmt.Errorf("weather api returned %d", resp.StatusCode)
	}

	var out currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("decode weather response: %w", err)
	}

	condition := "Unknown"
	if len(out.Weather) > 0 && out.Weather[0].Description != "" {
		condition = capitalize(out.Weather[0].Description)
	}
	observed := time.Now()
	if out.Dt > 0 {
		observed = time.Unix(out.Dt, 0)
	}
	name := out.Name
	if name == "" {
		name = city
	}

	return models.WeatherSnapshot{
		City:        name,
		TempCelsius: out.Main.Temp,
		Condition:   condition,
		ObservedAt:  observed,
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
