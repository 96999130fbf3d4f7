package handler

import "github.com/wyclub/member-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"max=120"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type signUpResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	// ConfirmationRequired tells the client to prompt for email verification
	// before the first sign-in.
	ConfirmationRequired bool `json:"confirmation_required"`
}

type signInResponse struct {
	Token string           `json:"token"`
	State domain.AuthState `json:"state"`
}

type messageResponse struct {
	Message string `json:"message"`
}
