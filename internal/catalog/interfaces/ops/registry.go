// Package ops exposes the catalog as named operations taking positional JSON
// arguments.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"asset-catalog/internal/catalog/application"
	catalog "asset-catalog/internal/catalog/domain"
)

var (
	// ErrUnknownOperation is returned for an unregistered operation name.
	ErrUnknownOperation = errors.New("ops: unknown operation")
	// ErrInvalidArgs is returned when the positional arguments do not fit.
	ErrInvalidArgs = errors.New("ops: invalid arguments")
)

// Result is an operation outcome. NotFound marks a missing-by-id read, which
// is not an error.
type Result struct {
	Value    any  `json:"result"`
	NotFound bool `json:"not_found"`
}

// Handler executes one operation.
type Handler func(ctx context.Context, args []json.RawMessage) (Result, error)

// Registry maps operation names to handlers.
type Registry struct {
	handlers map[string]Handler
	aliases  map[string]string
}

// NewRegistry registers every catalog operation against svc.
func NewRegistry(svc *application.Service) (*Registry, error) {
	if svc == nil {
		return nil, errors.New("ops registry: nil service")
	}
	r := &Registry{
		handlers: make(map[string]Handler),
		aliases:  make(map[string]string),
	}

	for _, v := range catalog.Variants() {
		r.registerVariant(svc, v)
	}

	r.handlers["saveStation"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 1); err != nil {
			return Result{}, err
		}
		station, err := DecodeStation(args[0])
		if err != nil {
			return Result{}, err
		}
		id, err := svc.SaveStation(ctx, station)
		return Result{Value: id}, err
	}
	r.handlers["listStations"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 0); err != nil {
			return Result{}, err
		}
		stations, err := svc.ListStations(ctx)
		return Result{Value: stations}, err
	}
	r.handlers["getStationById"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 1); err != nil {
			return Result{}, err
		}
		id, ok, err := decodeLookupID(args[0])
		if err != nil || !ok {
			return Result{NotFound: err == nil}, err
		}
		station, err := svc.GetStation(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if station == nil {
			return Result{NotFound: true}, nil
		}
		return Result{Value: station}, nil
	}
	r.handlers["updateStation"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 2); err != nil {
			return Result{}, err
		}
		id, err := decodeID(args[0])
		if err != nil {
			return Result{}, err
		}
		patch, err := DecodeStationPatch(args[1])
		if err != nil {
			return Result{}, err
		}
		ok, err := svc.UpdateStation(ctx, id, patch)
		return Result{Value: ok}, err
	}
	r.handlers["deleteStation"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 1); err != nil {
			return Result{}, err
		}
		id, err := decodeID(args[0])
		if err != nil {
			return Result{}, err
		}
		ok, err := svc.DeleteStation(ctx, id)
		return Result{Value: ok}, err
	}
	r.handlers["getAssetCountsByStation"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 0); err != nil {
			return Result{}, err
		}
		counts, err := svc.AssetCountsByStation(ctx)
		return Result{Value: counts}, err
	}
	r.handlers["getAssetTotals"] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 0); err != nil {
			return Result{}, err
		}
		totals, err := svc.AssetTotals(ctx)
		return Result{Value: totals}, err
	}

	// Names used by earlier front-ends.
	r.aliases["getStations"] = "listStations"
	r.aliases["getStationsById"] = "getStationById"
	r.aliases["getVehiclesWithStationNames"] = "listVehicleWithStationName"
	r.aliases["getFurnitureWithStationName"] = "listFurnitureWithStationName"
	r.aliases["getOtherWithStationName"] = "listOtherWithStationName"
	r.aliases["getOfficeEquipment"] = "listOfficeEquipmentWithStationName"
	r.aliases["getVehicle"] = "listVehicleWithStationName"

	return r, nil
}

func (r *Registry) registerVariant(svc *application.Service, v catalog.Variant) {
	r.handlers[application.OperationName("save", v, "")] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 1); err != nil {
			return Result{}, err
		}
		asset, err := DecodeAsset(v, args[0])
		if err != nil {
			return Result{}, err
		}
		id, err := svc.SaveAsset(ctx, asset)
		return Result{Value: id}, err
	}
	r.handlers[application.OperationName("get", v, "ById")] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 1); err != nil {
			return Result{}, err
		}
		id, ok, err := decodeLookupID(args[0])
		if err != nil || !ok {
			return Result{NotFound: err == nil}, err
		}
		asset, err := svc.GetAsset(ctx, v, id)
		if err != nil {
			return Result{}, err
		}
		if asset == nil {
			return Result{NotFound: true}, nil
		}
		return Result{Value: asset}, nil
	}
	r.handlers[application.OperationName("list", v, "WithStationName")] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 0); err != nil {
			return Result{}, err
		}
		listings, err := svc.ListAssets(ctx, v)
		return Result{Value: listings}, err
	}
	r.handlers[application.OperationName("update", v, "")] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 2); err != nil {
			return Result{}, err
		}
		id, err := decodeID(args[0])
		if err != nil {
			return Result{}, err
		}
		patch, err := DecodeAssetPatch(v, args[1])
		if err != nil {
			return Result{}, err
		}
		ok, err := svc.UpdateAsset(ctx, v, id, patch)
		return Result{Value: ok}, err
	}
	r.handlers[application.OperationName("delete", v, "")] = func(ctx context.Context, args []json.RawMessage) (Result, error) {
		if err := expectArgs(args, 1); err != nil {
			return Result{}, err
		}
		id, err := decodeID(args[0])
		if err != nil {
			return Result{}, err
		}
		ok, err := svc.DeleteAsset(ctx, v, id)
		return Result{Value: ok}, err
	}
}

// Invoke runs the named operation.
func (r *Registry) Invoke(ctx context.Context, name string, args []json.RawMessage) (Result, error) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	handler, ok := r.handlers[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	result, err := handler(ctx, args)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// Names lists the registered operation names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expectArgs(args []json.RawMessage, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidArgs, n, len(args))
	}
	return nil
}
