package sms

import "context"

// Provider delivers short messages. Callers treat delivery as
// fire-and-forget; a failed send is logged, never propagated.
type Provider interface {
	SendSMS(ctx context.Context, request *Request) (*Response, error)
}

type Request struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, otp
}

type Response struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
