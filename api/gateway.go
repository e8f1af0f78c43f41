// Package api decodes request payloads, drives the blob store, and
// classifies outcomes into transport-agnostic results. It performs no
// filesystem access and holds no state between calls.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexjoedt/jsonstore"
)

// Store is the storage contract the gateway drives. *jsonstore.Store
// implements it, as does the server's caching wrapper.
type Store interface {
	Put(ctx context.Context, key, filename string, data any) error
	Get(ctx context.Context, key, filename string) (json.RawMessage, error)
	List(ctx context.Context, key string) ([]string, error)
}

// Status classifies a result for the transport layer.
type Status int

const (
	StatusOK Status = iota
	StatusClientError
	StatusNotFound
	StatusTooLarge
	StatusInternalError
)

// HTTPCode maps a status classification to its HTTP status code.
func (s Status) HTTPCode() int {
	switch s {
	case StatusOK:
		return http.StatusOK
	case StatusClientError:
		return http.StatusBadRequest
	case StatusNotFound:
		return http.StatusNotFound
	case StatusTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Result is the outcome handed to the transport layer: a classification, a
// stable client-facing message, and an optional payload whose fields the
// transport merges into the response envelope.
//
// Detail carries a raw diagnostic for operator visibility and is only ever
// populated on internal-error results. It must not be serialized to clients.
type Result struct {
	Status  Status
	Message string
	Payload map[string]any
	Detail  string
}

// Gateway turns raw request bodies into validated store calls.
type Gateway struct {
	store Store
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// request is the decoded body shape shared by all three operations.
// Pointer fields distinguish absent from zero; Data distinguishes absent
// (nil) from an explicit JSON null ("null").
type request struct {
	Key      *string         `json:"key"`
	Filename *string         `json:"filename"`
	Data     json.RawMessage `json:"data"`
}

// decode parses body into a request. Field-level type mismatches are
// reported as a missing/invalid field by the callers, so only structural
// parse failures surface here.
func decode(body []byte) (*request, *Result) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Result{Status: StatusClientError, Message: "Invalid JSON"}
	}

	req := &request{Data: raw["data"]}
	if v, ok := raw["key"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			req.Key = &s
		}
	}
	if v, ok := raw["filename"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			req.Filename = &s
		}
	}

	return req, nil
}

// HandlePut stores the body's data under (key, filename).
func (g *Gateway) HandlePut(ctx context.Context, body []byte) Result {
	req, errRes := decode(body)
	if errRes != nil {
		return *errRes
	}

	if req.Key == nil {
		return Result{Status: StatusClientError, Message: "Missing or invalid 'key' field"}
	}
	if req.Filename == nil {
		return Result{Status: StatusClientError, Message: "Missing or invalid 'filename' field"}
	}
	if req.Data == nil {
		return Result{Status: StatusClientError, Message: "Missing 'data' field"}
	}

	if err := g.store.Put(ctx, *req.Key, *req.Filename, req.Data); err != nil {
		return classify(err)
	}

	return Result{Status: StatusOK, Message: "success"}
}

// HandleGet returns the blob at (key, filename) under the "data" payload key.
func (g *Gateway) HandleGet(ctx context.Context, body []byte) Result {
	req, errRes := decode(body)
	if errRes != nil {
		return *errRes
	}

	if req.Key == nil {
		return Result{Status: StatusClientError, Message: "Missing or invalid 'key' field"}
	}
	if req.Filename == nil {
		return Result{Status: StatusClientError, Message: "Missing or invalid 'filename' field"}
	}

	data, err := g.store.Get(ctx, *req.Key, *req.Filename)
	if err != nil {
		return classify(err)
	}

	return Result{
		Status:  StatusOK,
		Message: "success",
		Payload: map[string]any{"data": data},
	}
}

// HandleList returns the key's blob names under the "files" payload key.
func (g *Gateway) HandleList(ctx context.Context, body []byte) Result {
	req, errRes := decode(body)
	if errRes != nil {
		return *errRes
	}

	if req.Key == nil {
		return Result{Status: StatusClientError, Message: "Missing or invalid 'key' field"}
	}

	files, err := g.store.List(ctx, *req.Key)
	if err != nil {
		return classify(err)
	}

	return Result{
		Status:  StatusOK,
		Message: "success",
		Payload: map[string]any{"files": files},
	}
}

// classify maps a store error to its observable tier. Client-facing messages
// are stable and never leak filesystem paths; internal errors additionally
// carry the raw error string in Detail for operators.
func classify(err error) Result {
	switch {
	case errors.Is(err, jsonstore.ErrNamespaceNotFound):
		return Result{Status: StatusNotFound, Message: "Key directory not found"}
	case errors.Is(err, jsonstore.ErrNotFound):
		return Result{Status: StatusNotFound, Message: "File not found"}
	case errors.Is(err, jsonstore.ErrInvalidContent):
		return Result{Status: StatusClientError, Message: "Invalid JSON data"}
	case errors.Is(err, jsonstore.ErrTooLarge):
		return Result{Status: StatusTooLarge, Message: "File exceeds maximum size (1MB)"}
	case errors.Is(err, jsonstore.ErrInvalidName):
		return Result{Status: StatusClientError, Message: "Invalid filename"}
	case errors.Is(err, jsonstore.ErrEncoding):
		return Result{Status: StatusInternalError, Message: "JSON encoding error", Detail: err.Error()}
	default:
		return Result{Status: StatusInternalError, Message: "File I/O error", Detail: err.Error()}
	}
}
