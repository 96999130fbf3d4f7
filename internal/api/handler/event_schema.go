package handler

type sessionRequest struct {
	UserID         string `json:"user_id" validate:"required"`
	Email          string `json:"email"   validate:"required,email"`
	Name           string `json:"name"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

type authEventRequest struct {
	Type string `json:"type" validate:"required,oneof=SIGNED_IN SIGNED_OUT TOKEN_REFRESHED"`
	// UserID is required for SIGNED_OUT events that carry no session.
	UserID  string          `json:"user_id" validate:"required_without=Session"`
	Session *sessionRequest `json:"session"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
