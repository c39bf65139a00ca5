package services

import (
	"database/sql"

	"github.com/google/uuid"

	"plantcare-be/internal/models"
)

// EventServiceProvider defines the interface for activity-feed services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, userID *string) (models.Event, error)
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records and serves activity events (signups, signins, completed
// analyses, system alerts).
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database and returns it for broadcast.
func (s *EventService) CreateEvent(eventType, level, message string, userID *string) (models.Event, error) {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}

	_, err := s.db.Exec("INSERT INTO events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID)
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
