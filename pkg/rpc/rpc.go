// Package rpc serves named procedures over the batched JSON transport spoken
// by tRPC's httpBatchLink.
//
//	GET  /api/trpc/croche.list?batch=1&input={"0":{"json":null}}
//	POST /api/trpc/croche.create,croche.delete?batch=1   body {"0":{...},"1":{...}}
//
// Queries must use GET and mutations POST. A batch answers with a JSON array
// in request order; a single call answers with one object.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/crochestock/pkg/httpx"
	"github.com/ghuser/crochestock/pkg/logger"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
)

// Kind distinguishes read-only procedures from state-changing ones.
type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) method() string {
	if k == Mutation {
		return http.MethodPost
	}
	return http.MethodGet
}

// Request is what a procedure receives. HTTP and Writer are the underlying
// exchange, for procedures that read or set cookies.
type Request struct {
	Path   string
	Input  json.RawMessage
	HTTP   *http.Request
	Writer http.ResponseWriter
}

// Handler runs one procedure call. The returned value is JSON-encoded as the
// call's data; a returned error is mapped through Options.StatusFor.
type Handler func(ctx context.Context, req *Request) (any, error)

// Options configures a Router.
type Options struct {
	// StatusFor maps a handler error to an HTTP status. Defaults to 500 for everything.
	StatusFor func(error) int
	// Production hides the messages of 5xx errors.
	Production bool
	// SuperJSON wraps inputs and outputs in the {"json": ...} envelope used by
	// clients configured with the superjson transformer.
	SuperJSON bool
	// CaptureError reports errors that map to a 5xx status, e.g. to Sentry.
	// Nil disables reporting.
	CaptureError func(context.Context, error)
}

type procedure struct {
	kind    Kind
	handler Handler
}

// Router is a procedure registry and the http.Handler serving it.
type Router struct {
	opts Options
	log  logger.Logger

	mu    sync.RWMutex
	procs map[string]procedure
}

// NewRouter returns an empty Router.
func NewRouter(log logger.Logger, opts Options) *Router {
	if opts.StatusFor == nil {
		opts.StatusFor = func(error) int { return http.StatusInternalServerError }
	}
	return &Router{opts: opts, log: log, procs: make(map[string]procedure)}
}

// Query registers a read-only procedure.
func (r *Router) Query(name string, h Handler) { r.register(name, Query, h) }

// Mutation registers a state-changing procedure.
func (r *Router) Mutation(name string, h Handler) { r.register(name, Mutation, h) }

func (r *Router) register(name string, kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.procs[name]; dup {
		panic(fmt.Sprintf("rpc: procedure %q registered twice", name))
	}
	r.procs[name] = procedure{kind: kind, handler: h}
}

// Procedures lists the registered procedure names.
func (r *Router) Procedures() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.procs))
	for name := range r.procs {
		names = append(names, name)
	}
	return names
}

func (r *Router) lookup(name string) (procedure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procs[name]
	return p, ok
}

// ServeHTTP answers one single or batched call. Mount it on a route with a
// {procedures} URL parameter, or on any path whose last segment names them.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	raw := chi.URLParam(req, "procedures")
	if raw == "" {
		raw = path.Base(req.URL.Path)
	}
	names := strings.Split(raw, ",")
	batch := req.URL.Query().Get("batch") == "1"

	inputs, err := r.readInputs(req, batch, len(names))
	if err != nil {
		r.write(w, batch, []callResult{r.failure(req.Context(), raw, err)})
		return
	}

	results := make([]callResult, len(names))
	for i, name := range names {
		results[i] = r.call(w, req, name, inputs[i])
	}
	r.write(w, batch, results)
}

func (r *Router) call(w http.ResponseWriter, req *http.Request, name string, input json.RawMessage) callResult {
	proc, ok := r.lookup(name)
	if !ok {
		return r.failure(req.Context(), name, &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("No procedure found on path %q", name)})
	}
	if req.Method != proc.kind.method() {
		return r.failure(req.Context(), name, &Error{
			Status:  http.StatusMethodNotAllowed,
			Message: fmt.Sprintf("Unsupported %s-request to %s procedure at path %q", req.Method, kindName(proc.kind), name),
		})
	}

	if r.opts.SuperJSON {
		input = unwrapEnvelope(input)
	}
	data, err := proc.handler(req.Context(), &Request{Path: name, Input: input, HTTP: req, Writer: w})
	if err != nil {
		return r.failure(req.Context(), name, err)
	}
	if r.opts.SuperJSON {
		data = envelope{JSON: data}
	}
	return callResult{status: http.StatusOK, body: resultBody{Result: &resultData{Data: data}}}
}

// readInputs returns one input per procedure. Missing inputs are nil.
func (r *Router) readInputs(req *http.Request, batch bool, n int) ([]json.RawMessage, error) {
	if !batch && n != 1 {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Multiple procedures require batch=1"}
	}

	var raw []byte
	if req.Method == http.MethodGet {
		raw = []byte(req.URL.Query().Get("input"))
	} else {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, &Error{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
			}
			return nil, &Error{Status: http.StatusBadRequest, Message: "Unreadable request body"}
		}
		raw = body
	}

	inputs := make([]json.RawMessage, n)
	if len(strings.TrimSpace(string(raw))) == 0 {
		return inputs, nil
	}
	if !batch {
		if !json.Valid(raw) {
			return nil, errParse
		}
		inputs[0] = raw
		return inputs, nil
	}

	var byIndex map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byIndex); err != nil {
		return nil, errParse
	}
	for i := range inputs {
		inputs[i] = byIndex[strconv.Itoa(i)]
	}
	return inputs, nil
}

func (r *Router) write(w http.ResponseWriter, batch bool, results []callResult) {
	if !batch {
		httpx.JSON(w, results[0].status, results[0].body)
		return
	}
	status := results[0].status
	bodies := make([]resultBody, len(results))
	for i, res := range results {
		bodies[i] = res.body
		if res.status != status {
			status = http.StatusMultiStatus
		}
	}
	httpx.JSON(w, status, bodies)
}

// Bind decodes and validates the call input into T. Failures are
// *validator.InputError values, which map to BAD_REQUEST.
func Bind[T any](req *Request) (*T, error) {
	var v T
	if err := pkgvalidator.Decode(req.Input, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func kindName(k Kind) string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

type envelope struct {
	JSON any `json:"json"`
}

// unwrapEnvelope returns the value inside {"json": ...}, or raw unchanged
// when it is not such an envelope.
func unwrapEnvelope(raw json.RawMessage) json.RawMessage {
	var env struct {
		JSON json.RawMessage `json:"json"`
	}
	if len(raw) == 0 || raw[0] != '{' {
		return raw
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.JSON == nil {
		return raw
	}
	return env.JSON
}
