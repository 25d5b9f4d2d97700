package dto

// BroadcastRequest targets an audience selector with a message. Async
// broadcasts enqueue deliveries and return immediately; synchronous ones
// report per-recipient outcomes.
type BroadcastRequest struct {
	Audience string `json:"audience" validate:"required"`
	Channel  string `json:"channel"`
	Title    string `json:"title" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Async    bool   `json:"async"`
}

// BroadcastEnqueued is the async broadcast acknowledgement.
type BroadcastEnqueued struct {
	Audience string `json:"audience"`
	Enqueued int    `json:"enqueued"`
}
