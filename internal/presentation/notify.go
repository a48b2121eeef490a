package presentation

import (
	"errors"

	catalog "asset-catalog/internal/catalog/domain"
	"asset-catalog/internal/catalog/interfaces/ops"
)

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is a user-facing message for a finished operation.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notify translates an operation outcome into a notification.
func Notify(action string, err error) Notification {
	if err == nil {
		return Notification{Level: LevelSuccess, Message: action + " succeeded"}
	}
	var message string
	switch {
	case errors.Is(err, catalog.ErrConstraintViolation):
		message = "the station name is already taken or the selected station does not exist"
	case errors.Is(err, catalog.ErrInvalidRecord), errors.Is(err, catalog.ErrUnknownVariant):
		message = "some fields are invalid: " + err.Error()
	case errors.Is(err, catalog.ErrStorageUnavailable):
		message = "the catalog store is unavailable"
	case errors.Is(err, ops.ErrUnknownOperation):
		message = "the catalog does not support this action"
	default:
		message = err.Error()
	}
	return Notification{Level: LevelError, Message: action + " failed: " + message}
}
