package events

import (
	"time"

	catalog "asset-catalog/internal/catalog/domain"
)

// Change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Wire names used by the event stream.
const (
	NameAssetUpdated   = "asset_updated"
	NameStationUpdated = "station_updated"
)

// AssetChanged is published after an asset is created, updated or deleted.
type AssetChanged struct {
	Variant    catalog.Variant `json:"variant"`
	ID         int64           `json:"id"`
	Action     string          `json:"action"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// StationChanged is published after a station is created, updated or deleted.
type StationChanged struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}
