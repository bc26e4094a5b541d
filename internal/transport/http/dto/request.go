package dto

import "strings"

// -------- Account --------

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest is the body of resend-verification and request-reset.
type EmailRequest struct {
	Email string `json:"email"`
}

func (r *EmailRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// -------- Journal --------

type CreateEntryRequest struct {
	Text string `json:"text"`
	// RequestFeedback defaults to true when omitted.
	RequestFeedback *bool `json:"requestFeedback,omitempty"`
}

func (r CreateEntryRequest) WantsFeedback() bool {
	return r.RequestFeedback == nil || *r.RequestFeedback
}
