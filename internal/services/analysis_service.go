package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"plantcare-be/internal/models"
)

// DiseasePredictor identifies a plant disease from an image.
type DiseasePredictor interface {
	Predict(ctx context.Context, image []byte, contentType string) (models.Prediction, error)
}

// WeatherProvider returns current conditions for a city.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (models.WeatherSnapshot, error)
}

// AdviceGenerator produces care guidance for a disease under given weather.
// weatherSummary is empty when no weather data is available.
type AdviceGenerator interface {
	Advise(ctx context.Context, disease, weatherSummary string) (string, error)
}

// AnalysisServiceProvider defines the interface for the analysis pipeline.
type AnalysisServiceProvider interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
}

// AnalysisTimeouts bounds each external call of the pipeline individually.
type AnalysisTimeouts struct {
	Predict time.Duration
	Weather time.Duration
	Advice  time.Duration
}

// AnalysisService sequences the diagnosis pipeline: predict, then weather,
// then advice. Callers reach it only through the session gate; it performs no
// authentication checks of its own.
type AnalysisService struct {
	predictor DiseasePredictor
	weather   WeatherProvider
	advisor   AdviceGenerator
	timeouts  AnalysisTimeouts

	// weatherRequired selects the abort policy for weather failures. The
	// default (false) degrades: the analysis proceeds with the weather
	// marked unavailable.
	weatherRequired bool
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(p DiseasePredictor, w WeatherProvider, a AdviceGenerator, timeouts AnalysisTimeouts, weatherRequired bool) *AnalysisService {
	return &AnalysisService{
		predictor:       p,
		weather:         w,
		advisor:         a,
		timeouts:        timeouts,
		weatherRequired: weatherRequired,
	}
}

// weatherOutcome is the explicit result of the weather step: either a
// snapshot, or unavailability with its cause. Modelling the soft failure as a
// value keeps the orchestrator's branching enumerable.
type weatherOutcome struct {
	snapshot *models.WeatherSnapshot
	err      error
}

func (o weatherOutcome) available() bool { return o.err == nil && o.snapshot != nil }

// Analyze runs the full pipeline once. Each external call gets one attempt
// under its own timeout; retries, if any, belong to the adapters.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	prediction, err := s.predict(ctx, req)
	if err != nil {
		// Weather and advice are meaningless without a diagnosis.
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrPrediction, err)
	}

	outcome := s.fetchWeather(ctx, req.City)
	if !outcome.available() {
		if s.weatherRequired {
			return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrWeather, outcome.err)
		}
		log.Warn().Err(outcome.err).Str("city", req.City).Msg("Weather unavailable, continuing without it")
	}

	summary := ""
	if outcome.available() {
		summary = outcome.snapshot.Summary()
	}

	advice, err := s.advise(ctx, prediction.Label, summary)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrAdvice, err)
	}

	return models.AnalysisResult{
		Prediction:       prediction,
		Weather:          outcome.snapshot,
		WeatherAvailable: outcome.available(),
		Advice:           advice,
		ImageName:        req.Filename,
		CreatedAt:        time.Now(),
	}, nil
}

func (s *AnalysisService) predict(ctx context.Context, req models.AnalysisRequest) (models.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Predict)
	defer cancel()
	return s.predictor.Predict(ctx, req.Image, req.ContentType)
}

func (s *AnalysisService) fetchWeather(ctx context.Context, city string) weatherOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Weather)
	defer cancel()

	snapshot, err := s.weather.Current(ctx, city)
	if err != nil {
		return weatherOutcome{err: err}
	}
	return weatherOutcome{snapshot: &snapshot}
}

func (s *AnalysisService) advise(ctx context.Context, label, weatherSummary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Advice)
	defer cancel()
	return s.advisor.Advise(ctx, promptLabel(label), weatherSummary)
}

// promptLabel turns the model's raw class name (e.g. "Tomato___Early_blight")
// into plain words for the advice prompt.
func promptLabel(label string) string {
	return strings.NewReplacer("___", " ", "_", " ").Replace(label)
}
