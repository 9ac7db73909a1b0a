// Package validation checks the shape of sanitized request payloads.
package validation

import (
	apperrors "chat-room/errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ParticipantRequest struct {
	Name string `validate:"required"`
}

type MessageRequest struct {
	To   string `validate:"required"`
	Text string `validate:"required"`
	Type string `validate:"required"`
}

type ViewerRequest struct {
	User string `validate:"required"`
}

func ValidateParticipant(req ParticipantRequest) error {
	return check(req)
}

func ValidateMessage(req MessageRequest) error {
	return check(req)
}

func ValidateViewer(req ViewerRequest) error {
	return check(req)
}

// ParseLimit accepts an absent limit or a strictly positive integer.
func ParseLimit(raw *string) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	limit, err := strconv.Atoi(*raw)
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer, got %q", apperrors.ErrValidationFailed, *raw)
	}
	return &limit, nil
}

func check(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}
	return nil
}
