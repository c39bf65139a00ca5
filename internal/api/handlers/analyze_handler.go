package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"plantcare-be/internal/auth"
	"plantcare-be/internal/models"
	"plantcare-be/internal/services"
	"plantcare-be/internal/uploads"
	"plantcare-be/internal/web"
	ws "plantcare-be/internal/websocket"
)

// maxImageBytes caps the uploaded photo size.
const maxImageBytes = 10 << 20

// AnalyzeHandler serves the protected analyze routes and the stored images.
type AnalyzeHandler struct {
	analysis services.AnalysisServiceProvider
	uploads  *uploads.Store
	events   services.EventServiceProvider
	hub      *ws.Hub
	render   *web.Renderer
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analysis services.AnalysisServiceProvider, up *uploads.Store, events services.EventServiceProvider, hub *ws.Hub, render *web.Renderer) *AnalyzeHandler {
	return &AnalyzeHandler{analysis: analysis, uploads: up, events: events, hub: hub, render: render}
}

// analyzeView is what the result section of the analyze page shows.
type analyzeView struct {
	ImageName  string
	Disease    string
	Confidence string
	City       string
	Weather    string
	Advice     string
}

// Form renders the empty analyze page.
func (h *AnalyzeHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "analyze.html", web.PageData{Username: auth.FromContext(r.Context()).Username})
}

// Analyze accepts the multipart image + city form and runs the pipeline.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.renderForm(w, http.StatusBadRequest, session, "The upload is too large or the form is malformed.")
		return
	}

	city := r.PostFormValue("city")
	file, header, err := r.FormFile("file")
	if err != nil || city == "" {
		h.renderForm(w, http.StatusBadRequest, session, "A plant photo and a city are both required.")
		return
	}
	defer file.Close()

	if !uploads.Allowed(header.Filename) {
		h.renderForm(w, http.StatusBadRequest, session, "Only .png, .jpg and .jpeg images are supported.")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		h.renderForm(w, http.StatusBadRequest, session, "Could not read the uploaded image.")
		return
	}

	storedName, err := h.uploads.Save(header.Filename, image)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store uploaded image")
		h.renderForm(w, http.StatusInternalServerError, session, "Could not store the uploaded image.")
		return
	}

	result, err := h.analysis.Analyze(r.Context(), models.AnalysisRequest{
		Image:       image,
		Filename:    storedName,
		ContentType: header.Header.Get("Content-Type"),
		City:        city,
	})
	if err != nil {
		h.renderFailure(w, session, city, err)
		return
	}

	h.recordEvent("analysis.complete", "info",
		fmt.Sprintf("%s diagnosed %s in %s", session.Username, displayLabel(result.Prediction.Label), city),
		&session.UserID)

	h.render.Render(w, http.StatusOK, "analyze.html", web.PageData{
		Username: session.Username,
		Data:     newAnalyzeView(result, city),
	})
}

// ServeUpload returns a stored image to its authenticated viewer.
func (h *AnalyzeHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := h.uploads.Path(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (h *AnalyzeHandler) renderForm(w http.ResponseWriter, status int, session *auth.Session, message string) {
	h.render.Render(w, status, "analyze.html", web.PageData{Username: session.Username, Error: message})
}

// renderFailure maps pipeline failures to the error view. None of them is
// fatal to the process.
func (h *AnalyzeHandler) renderFailure(w http.ResponseWriter, session *auth.Session, city string, err error) {
	var message string
	switch {
	case errors.Is(err, services.ErrPrediction):
		message = "We could not diagnose this image. Try a clearer photo of the affected leaves."
	case errors.Is(err, services.ErrWeather):
		message = "Weather lookup for " + city + " failed and this deployment requires it."
	case errors.Is(err, services.ErrAdvice):
		message = "The diagnosis succeeded but care advice could not be generated. Please retry."
	default:
		message = "The analysis failed unexpectedly. Please retry."
	}

	log.Error().Err(err).Str("user_id", session.UserID).Str("city", city).Msg("Analysis failed")
	h.render.Render(w, http.StatusBadGateway, "error.html", web.PageData{Username: session.Username, Error: message})
}

func newAnalyzeView(result models.AnalysisResult, city string) analyzeView {
	view := analyzeView{
		ImageName:  result.ImageName,
		Disease:    displayLabel(result.Prediction.Label),
		Confidence: fmt.Sprintf("%.2f%%", result.Prediction.Confidence*100),
		City:       city,
		Weather:    "Weather data unavailable",
		Advice:     result.Advice,
	}
	if result.WeatherAvailable {
		view.Weather = result.Weather.Summary()
	}
	return view
}

// displayLabel turns the model's raw class name into the form shown to the
// user, e.g. "Tomato___Early_blight" becomes "Tomato - Early blight".
func displayLabel(label string) string {
	return strings.NewReplacer("___", " - ", "_", " ").Replace(label)
}

func (h *AnalyzeHandler) recordEvent(eventType, level, message string, userID *string) {
	event, err := h.events.CreateEvent(eventType, level, message, userID)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
		return
	}
	h.hub.Broadcast <- ws.NewEventMessage(event)
}
