package catalog

import "errors"

var (
	// ErrConstraintViolation is returned when a write breaks a uniqueness or station reference rule.
	ErrConstraintViolation = errors.New("catalog: constraint violation")
	// ErrNotFound indicates a missing record.
	ErrNotFound = errors.New("catalog: not found")
	// ErrStorageUnavailable is returned when the underlying store cannot be opened or its schema is missing.
	ErrStorageUnavailable = errors.New("catalog: storage unavailable")
	// ErrInvalidRecord is returned when a record fails validation or coercion.
	ErrInvalidRecord = errors.New("catalog: invalid record")
	// ErrUnknownVariant is returned for an unrecognized asset variant.
	ErrUnknownVariant = errors.New("catalog: unknown variant")
)
