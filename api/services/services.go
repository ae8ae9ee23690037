package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound       = errors.New("neo not found")
	ErrInvalidRequest = errors.New("invalid request")
)

var validate = validator.New()

// EventPublisher publishes domain events. A nil publisher disables events.
type EventPublisher interface {
	PublishEvent(eventType, subject string, data map[string]interface{}) error
}
