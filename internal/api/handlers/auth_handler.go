package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"plantcare-be/internal/auth"
	"plantcare-be/internal/services"
	"plantcare-be/internal/web"
	ws "plantcare-be/internal/websocket"
)

// AuthHandler serves the signup, signin, and logout routes plus the protected
// landing page.
type AuthHandler struct {
	users    services.UserServiceProvider
	sessions *auth.Manager
	events   services.EventServiceProvider
	hub      *ws.Hub
	render   *web.Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, sessions *auth.Manager, events services.EventServiceProvider, hub *ws.Hub, render *web.Renderer) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, events: events, hub: hub, render: render}
}

// SignupForm renders the signup page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "signup.html", web.PageData{})
}

// Signup registers a new account from the submitted form.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "signup.html", web.PageData{Error: "Invalid form submission"})
		return
	}

	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")

	if password != confirm {
		h.render.Render(w, http.StatusBadRequest, "signup.html", web.PageData{Error: "Passwords do not match!"})
		return
	}

	user, err := h.users.Register(r.Context(), username, email, password)
	switch {
	case errors.Is(err, services.ErrValidation):
		h.render.Render(w, http.StatusBadRequest, "signup.html", web.PageData{Error: "All fields are required and the email must be valid."})
		return
	case errors.Is(err, services.ErrDuplicateEmail):
		h.render.Render(w, http.StatusConflict, "signup.html", web.PageData{Error: "Email already registered!"})
		return
	case err != nil:
		log.Error().Err(err).Str("email", email).Msg("Failed to register user")
		h.render.Render(w, http.StatusInternalServerError, "signup.html", web.PageData{Error: "Could not create the account. Please try again."})
		return
	}

	h.recordEvent("auth.signup", "info", user.Username+" created an account", &user.ID)
	http.Redirect(w, r, "/signin?registered=1", http.StatusSeeOther)
}

// SigninForm renders the signin page, with a flash after registration.
func (h *AuthHandler) SigninForm(w http.ResponseWriter, r *http.Request) {
	data := web.PageData{}
	if r.URL.Query().Get("registered") != "" {
		data.Flash = "Account created successfully! Please sign in."
	}
	h.render.Render(w, http.StatusOK, "signin.html", data)
}

// Signin authenticates the credentials and establishes a session.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "signin.html", web.PageData{Error: "Invalid form submission"})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.users.Authenticate(r.Context(), email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Warn().Str("email", email).Msg("Failed authentication attempt")
		// One message for unknown email and wrong password alike.
		h.render.Render(w, http.StatusUnauthorized, "signin.html", web.PageData{Error: "Invalid email or password!"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Authentication lookup failed")
		h.render.Render(w, http.StatusInternalServerError, "signin.html", web.PageData{Error: "Could not sign you in. Please try again."})
		return
	}

	if _, err := h.sessions.Issue(w, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session")
		h.render.Render(w, http.StatusInternalServerError, "signin.html", web.PageData{Error: "Could not sign you in. Please try again."})
		return
	}

	h.recordEvent("auth.signin", "info", user.Username+" signed in", &user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and always lands on signin; repeating it is
// harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// Home renders the protected landing page.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())
	h.render.Render(w, http.StatusOK, "index.html", web.PageData{Username: s.Username})
}

func (h *AuthHandler) recordEvent(eventType, level, message string, userID *string) {
	event, err := h.events.CreateEvent(eventType, level, message, userID)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
		return
	}
	h.hub.Broadcast <- ws.NewEventMessage(event)
}
