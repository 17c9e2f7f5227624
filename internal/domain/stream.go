package domain

import "github.com/google/uuid"

// Stream names (должны совпадать с публикующей стороной)
const (
	StreamGeofenceResolve = "stream:geofence:resolve"
	StreamGeofenceDone    = "stream:geofence:done"
)

// GeofenceResolveEvent - входящее событие на определение региона по координатам
type GeofenceResolveEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// GeofenceDoneEvent - результат определения региона
type GeofenceDoneEvent struct {
	RequestID  uuid.UUID         `json:"request_id"`
	RegionID   *int64            `json:"region_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	NotFound   bool              `json:"not_found,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
