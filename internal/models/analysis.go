package models

import (
	"fmt"
	"time"
)

// AnalysisRequest bundles the inputs of a single analyze call. It lives only
// for the duration of the request and is never persisted.
type AnalysisRequest struct {
	Image       []byte
	Filename    string
	ContentType string
	City        string
}

// Prediction is the output of the disease model for one image.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
}

// WeatherSnapshot holds the current conditions for a city at observation time.
type WeatherSnapshot struct {
	City        string    `json:"city"`
	TempCelsius float64   `json:"tempCelsius"`
	Condition   string    `json:"condition"`
	ObservedAt  time.Time `json:"observedAt"`
}

// Summary renders the snapshot the way the advice prompt expects it.
func (w WeatherSnapshot) Summary() string {
	return fmt.Sprintf("%s, %.1f°C", w.Condition, w.TempCelsius)
}

// AnalysisResult is the assembled outcome of the full pipeline. Weather is nil
// whenever WeatherAvailable is false.
type AnalysisResult struct {
	Prediction       Prediction       `json:"prediction"`
	Weather          *WeatherSnapshot `json:"weather,omitempty"`
	WeatherAvailable bool             `json:"weatherAvailable"`
	Advice           string           `json:"advice"`
	ImageName        string           `json:"imageName"`
	CreatedAt        time.Time        `json:"createdAt"`
}
