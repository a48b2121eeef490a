// Package presentation holds front-end session state. It reaches the catalog
// only through named operations.
package presentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"asset-catalog/internal/catalog/interfaces/ops"
)

// Reply is the raw outcome of an operation.
type Reply struct {
	Result   json.RawMessage `json:"result"`
	NotFound bool            `json:"not_found"`
}

// Invoker issues a named operation with positional arguments.
type Invoker interface {
	Invoke(ctx context.Context, op string, args ...any) (Reply, error)
}

// LocalInvoker calls an in-process registry.
type LocalInvoker struct {
	registry *ops.Registry
}

// NewLocalInvoker constructs a LocalInvoker.
func NewLocalInvoker(registry *ops.Registry) (*LocalInvoker, error) {
	if registry == nil {
		return nil, errors.New("presentation: nil registry")
	}
	return &LocalInvoker{registry: registry}, nil
}

// Invoke marshals args, runs the operation and marshals its result.
func (l *LocalInvoker) Invoke(ctx context.Context, op string, args ...any) (Reply, error) {
	raw, err := marshalArgs(args)
	if err != nil {
		return Reply{}, err
	}
	result, err := l.registry.Invoke(ctx, op, raw)
	if err != nil {
		return Reply{}, err
	}
	data, err := json.Marshal(result.Value)
	if err != nil {
		return Reply{}, fmt.Errorf("presentation: encode %s result: %w", op, err)
	}
	return Reply{Result: data, NotFound: result.NotFound}, nil
}

// HTTPInvoker calls the catalog's operation endpoint.
type HTTPInvoker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPInvoker constructs an HTTPInvoker for baseURL. A nil client uses a
// client with a 30s timeout.
func NewHTTPInvoker(baseURL string, client *http.Client) (*HTTPInvoker, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("presentation: empty base url")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPInvoker{baseURL: baseURL, client: client}, nil
}

// Invoke posts {"args": [...]} to /api/v1/ops/{op}. Error responses are
// returned as *ops.RemoteError.
func (h *HTTPInvoker) Invoke(ctx context.Context, op string, args ...any) (Reply, error) {
	raw, err := marshalArgs(args)
	if err != nil {
		return Reply{}, err
	}
	body, err := json.Marshal(struct {
		Args []json.RawMessage `json:"args"`
	}{Args: raw})
	if err != nil {
		return Reply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/v1/ops/"+op, bytes.NewReader(body))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("presentation: %s: %w", op, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("presentation: read %s response: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error ops.RemoteError `json:"error"`
		}
		if err := json.Unmarshal(data, &failure); err != nil || failure.Error.Kind == "" {
			return Reply{}, &ops.RemoteError{Kind: ops.KindInternal, Message: fmt.Sprintf("%s: status %d", op, resp.StatusCode)}
		}
		return Reply{}, &failure.Error
	}
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return Reply{}, fmt.Errorf("presentation: decode %s response: %w", op, err)
	}
	return reply, nil
}

func marshalArgs(args []any) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, len(args))
	for i, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("presentation: encode argument %d: %w", i, err)
		}
		raw[i] = data
	}
	return raw, nil
}
