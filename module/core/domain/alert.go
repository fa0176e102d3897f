package domain

// Delivery records how far an alert got through the provider's two
// dependent sub-actions: the text message first, then the voice call.
// When one half fails the other is not attempted, so TextSent && !CallPlaced
// means the contact received the SMS but no call.
type Delivery struct {
	TextSent   bool   `json:"text_sent"`
	CallPlaced bool   `json:"call_placed"`
	Detail     string `json:"detail,omitempty"`
}

// DispatchOutcome is surfaced to the caller of a dispatch attempt.
// It is never persisted.
type DispatchOutcome struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Delivery Delivery `json:"delivery"`
}

// AlertEvent is published for every provider attempt, success or failure.
type AlertEvent struct {
	Phone      string  `json:"phone"`
	Lat        float64 `json:"latitude"`
	Lon        float64 `json:"longitude"`
	Success    bool    `json:"success"`
	TextSent   bool    `json:"text_sent"`
	CallPlaced bool    `json:"call_placed"`
	Detail     string  `json:"detail,omitempty"`
	Timestamp  int64   `json:"timestamp"`
}
