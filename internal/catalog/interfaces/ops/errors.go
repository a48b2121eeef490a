package ops

import (
	"errors"

	catalog "asset-catalog/internal/catalog/domain"
)

// Error kinds carried across the operation boundary.
const (
	KindConstraintViolation = "constraint_violation"
	KindInvalidRecord       = "invalid_record"
	KindUnknownOperation    = "unknown_operation"
	KindStorageUnavailable  = "storage_unavailable"
	KindInternal            = "internal"
)

var kinds = []struct {
	kind string
	err  error
}{
	{KindConstraintViolation, catalog.ErrConstraintViolation},
	{KindInvalidRecord, catalog.ErrInvalidRecord},
	{KindInvalidRecord, catalog.ErrUnknownVariant},
	{KindInvalidRecord, ErrInvalidArgs},
	{KindUnknownOperation, ErrUnknownOperation},
	{KindStorageUnavailable, catalog.ErrStorageUnavailable},
}

// Kind classifies err for transport.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// RemoteError is a failure reported by the far side of the boundary. It
// matches the sentinel of its kind with errors.Is.
type RemoteError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel for the kind.
func (e *RemoteError) Unwrap() error {
	for _, k := range kinds {
		if k.kind == e.Kind {
			return k.err
		}
	}
	return nil
}
