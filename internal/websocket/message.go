package websocket

import (
	"encoding/json"

	"plantcare-be/internal/models"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewEventMessage encodes an activity event for broadcast. Encoding a plain
// struct of strings cannot fail, so the error is dropped.
func NewEventMessage(event models.Event) []byte {
	msg, _ := json.Marshal(Message{Action: "event", Payload: event})
	return msg
}
