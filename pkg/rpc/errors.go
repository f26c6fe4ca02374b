package rpc

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghuser/crochestock/pkg/httpx"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
)

// Error is a transport-level failure with an explicit status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

var errParse = &Error{Status: http.StatusBadRequest, Message: "Invalid JSON input"}

// JSON-RPC 2.0 error numbers and the names tRPC pairs with them.
var codes = map[int]struct {
	number int
	name   string
}{
	http.StatusBadRequest:            {-32600, "BAD_REQUEST"},
	http.StatusUnauthorized:          {-32001, "UNAUTHORIZED"},
	http.StatusForbidden:             {-32003, "FORBIDDEN"},
	http.StatusNotFound:              {-32004, "NOT_FOUND"},
	http.StatusMethodNotAllowed:      {-32005, "METHOD_NOT_SUPPORTED"},
	http.StatusConflict:              {-32009, "CONFLICT"},
	http.StatusRequestEntityTooLarge: {-32013, "PAYLOAD_TOO_LARGE"},
	http.StatusInternalServerError:   {-32603, "INTERNAL_SERVER_ERROR"},
}

type callResult struct {
	status int
	body   resultBody
}

type resultBody struct {
	Result *resultData `json:"result,omitempty"`
	Error  any         `json:"error,omitempty"`
}

type resultData struct {
	Data any `json:"data"`
}

type errorShape struct {
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Data    errorData `json:"data"`
}

type errorData struct {
	Code       string            `json:"code"`
	HTTPStatus int               `json:"httpStatus"`
	Path       string            `json:"path,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (r *Router) failure(ctx context.Context, path string, err error) callResult {
	status := http.StatusInternalServerError
	var rpcErr *Error
	var inputErr *pkgvalidator.InputError
	switch {
	case errors.As(err, &rpcErr):
		status = rpcErr.Status
	case errors.As(err, &inputErr):
		status = http.StatusBadRequest
	default:
		status = r.opts.StatusFor(err)
	}

	code, ok := codes[status]
	if !ok {
		code = codes[http.StatusInternalServerError]
	}
	if status >= http.StatusInternalServerError {
		r.log.Error("rpc procedure failed", "path", path, "error", err)
		if r.opts.CaptureError != nil {
			r.opts.CaptureError(ctx, err)
		}
	}

	shape := errorShape{
		Message: httpx.SafeError(err, status, r.opts.Production),
		Code:    code.number,
		Data:    errorData{Code: code.name, HTTPStatus: status, Path: path},
	}
	if inputErr != nil {
		shape.Message = inputErr.Message
		shape.Data.Fields = inputErr.Fields
	}

	var body any = shape
	if r.opts.SuperJSON {
		body = envelope{JSON: shape}
	}
	return callResult{status: status, body: resultBody{Error: body}}
}
