package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventParticipants Event = "participants"
	EventError        Event = "error"
	EventPong         Event = "pong"
)

// ParticipantsEvent is broadcast to a room whenever its headcount changes.
type ParticipantsEvent struct {
	Event       Event  `json:"event"`
	LiveClassID string `json:"live_class_id"`
	Count       int    `json:"count"`
	Max         int    `json:"max"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
