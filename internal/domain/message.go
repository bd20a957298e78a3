package domain

// MessageResponse is the body of responses that only carry a human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}
