package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart   Action = "start"
	ActionSwipe   Action = "swipe"
	ActionSetMode Action = "set_mode"
	ActionPing    Action = "ping"
)

// RequestPayload carries every client action; unused fields stay zero.
type RequestPayload struct {
	Action    Action `json:"action"`
	Mode      int    `json:"mode,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventSession     Event = "session"
	EventSwipeResult Event = "swipe_result"
	EventPong        Event = "pong"
)

// SessionResponse carries a fresh feed snapshot after start or set_mode.
type SessionResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data"`
}

// SwipeResultResponse carries the outcome of a swipe.
type SwipeResultResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
