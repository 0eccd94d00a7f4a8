// Package service exposes the ledger over Connect RPC.
//
// Messages are plain Go structs encoded as JSON, so procedures can be called
// with any HTTP client:
//
//	curl -H 'Content-Type: application/json' -d '{"month":"2024-06"}' \
//	    http://localhost:8080/billkhata.v1.MealService/ListMeals
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billkhata/internal/ledger"
)

// JSONCodec is the Connect codec for the plain message structs in this
// package. It replaces Connect's built-in "json" codec, which only accepts
// protobuf messages.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero
// message.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// procedures collects the unary handlers of one service.
type procedures struct {
	service string
	mux     *http.ServeMux
	opts    []connect.HandlerOption
}

func newProcedures(service string, opts []connect.HandlerOption) *procedures {
	return &procedures{
		service: service,
		mux:     http.NewServeMux(),
		opts:    append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...),
	}
}

// path is the URL prefix every procedure of the service lives under.
func (p *procedures) path() string {
	return "/" + p.service + "/"
}

func handle[Req, Res any](p *procedures, method string, fn func(context.Context, *Req) (*Res, error)) {
	procedure := p.path() + method
	p.mux.Handle(procedure, connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			res, err := fn(ctx, req.Msg)
			if err != nil {
				return nil, toConnectError(procedure, err)
			}
			return connect.NewResponse(res), nil
		},
		p.opts...,
	))
}

// toConnectError maps ledger errors to Connect codes. Unexpected errors are
// logged here since their details are not sent to the caller.
func toConnectError(procedure string, err error) error {
	var (
		connectErr   *connect.Error
		validation   *ledger.ValidationError
		immutable    *ledger.ImmutableRecordError
		notFound     *ledger.NotFoundError
		conflict     *ledger.ConflictError
		requestError *requestError
	)
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.As(err, &requestError), errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &immutable):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &conflict):
		return connect.NewError(connect.CodeAborted, err)
	default:
		slog.Error("Request failed", "procedure", procedure, "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}

// requestError reports a malformed field in a request message.
type requestError struct {
	field string
	err   error
}

func (e *requestError) Error() string {
	return fmt.Sprintf("%s: %v", e.field, e.err)
}

func (e *requestError) Unwrap() error { return e.err }

func badField(field string, err error) error {
	return &requestError{field: field, err: err}
}
