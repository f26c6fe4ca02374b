package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/rpc"
)

var errMissing = errors.New("missing")

type echoInput struct {
	Name string `json:"name" validate:"required"`
}

func newServer(t *testing.T, opts rpc.Options) http.Handler {
	t.Helper()
	if opts.StatusFor == nil {
		opts.StatusFor = func(err error) int {
			if errors.Is(err, errMissing) {
				return http.StatusNotFound
			}
			return http.StatusInternalServerError
		}
	}
	router := rpc.NewRouter(logger.Discard(), opts)
	router.Query("echo", func(_ context.Context, req *rpc.Request) (any, error) {
		in, err := rpc.Bind[echoInput](req)
		if err != nil {
			return nil, err
		}
		return map[string]string{"name": in.Name}, nil
	})
	router.Query("nothing", func(context.Context, *rpc.Request) (any, error) { return nil, nil })
	router.Query("missing", func(context.Context, *rpc.Request) (any, error) { return nil, errMissing })
	router.Query("boom", func(context.Context, *rpc.Request) (any, error) { return nil, errors.New("db exploded") })
	router.Mutation("remove", func(context.Context, *rpc.Request) (any, error) { return true, nil })

	r := chi.NewRouter()
	r.Handle("/trpc/{procedures}", router)
	return r
}

func get(t *testing.T, h http.Handler, procedures, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/trpc/"+procedures+"?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, h http.Handler, procedures, rawQuery, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/trpc/"+procedures+"?"+rawQuery, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    struct {
		Code       string            `json:"code"`
		HTTPStatus int               `json:"httpStatus"`
		Path       string            `json:"path"`
		Fields     map[string]string `json:"fields"`
	} `json:"data"`
}

type plainResult struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Error *errBody `json:"error"`
}

func TestSingleQuery(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := get(t, h, "echo", "input="+url.QueryEscape(`{"name":"yarn"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var res plainResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Result == nil || string(res.Result.Data) != `{"name":"yarn"}` {
		t.Errorf("data = %s", rec.Body)
	}
}

func TestNilResultEncodesNull(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := get(t, h, "nothing", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"result":{"data":null}}` {
		t.Errorf("body = %s", got)
	}
}

func TestBatchSuperJSON(t *testing.T) {
	h := newServer(t, rpc.Options{SuperJSON: true})
	input := `{"0":{"json":{"name":"hook"}},"1":{"json":null}}`
	rec := get(t, h, "echo,nothing", "batch=1&input="+url.QueryEscape(input))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var res []struct {
		Result struct {
			Data struct {
				JSON json.RawMessage `json:"json"`
			} `json:"data"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results", len(res))
	}
	if string(res[0].Result.Data.JSON) != `{"name":"hook"}` {
		t.Errorf("first = %s", res[0].Result.Data.JSON)
	}
	if string(res[1].Result.Data.JSON) != "null" {
		t.Errorf("second = %s", res[1].Result.Data.JSON)
	}
}

func TestBatchMutationFromBody(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := post(t, h, "remove,remove", "batch=1", `{"0":{"id":1},"1":{"id":2}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var res []plainResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, r := range res {
		if r.Result == nil || string(r.Result.Data) != "true" {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestErrors(t *testing.T) {
	h := newServer(t, rpc.Options{})

	tests := []struct {
		name       string
		rec        func() *httptest.ResponseRecorder
		wantStatus int
		wantCode   string
		wantNumber int
	}{
		{
			name:       "unknown procedure",
			rec:        func() *httptest.ResponseRecorder { return get(t, h, "nope", "") },
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantNumber: -32004,
		},
		{
			name:       "query over POST",
			rec:        func() *httptest.ResponseRecorder { return post(t, h, "echo", "", `{"name":"x"}`) },
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "METHOD_NOT_SUPPORTED",
			wantNumber: -32005,
		},
		{
			name:       "mutation over GET",
			rec:        func() *httptest.ResponseRecorder { return get(t, h, "remove", "") },
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "METHOD_NOT_SUPPORTED",
			wantNumber: -32005,
		},
		{
			name:       "invalid input",
			rec:        func() *httptest.ResponseRecorder { return get(t, h, "echo", "input="+url.QueryEscape(`{}`)) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantNumber: -32600,
		},
		{
			name:       "malformed input",
			rec:        func() *httptest.ResponseRecorder { return get(t, h, "echo", "input=%7Bnot-json") },
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantNumber: -32600,
		},
		{
			name:       "mapped domain error",
			rec:        func() *httptest.ResponseRecorder { return get(t, h, "missing", "") },
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantNumber: -32004,
		},
		{
			name:       "unmapped error",
			rec:        func() *httptest.ResponseRecorder { return get(t, h, "boom", "") },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantNumber: -32603,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec()
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			var res plainResult
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.Error == nil {
				t.Fatalf("expected error body, got %s", rec.Body)
			}
			if res.Error.Data.Code != tt.wantCode || res.Error.Code != tt.wantNumber {
				t.Errorf("code = %s/%d, want %s/%d", res.Error.Data.Code, res.Error.Code, tt.wantCode, tt.wantNumber)
			}
			if res.Error.Data.HTTPStatus != tt.wantStatus {
				t.Errorf("httpStatus = %d", res.Error.Data.HTTPStatus)
			}
		})
	}
}

func TestValidationFieldsReported(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := get(t, h, "echo", "input="+url.QueryEscape(`{}`))

	var res plainResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Error == nil || res.Error.Data.Fields["name"] == "" {
		t.Errorf("expected field error for name, got %s", rec.Body)
	}
	if res.Error.Data.Path != "echo" {
		t.Errorf("path = %q", res.Error.Data.Path)
	}
}

func TestBatchMixedOutcomesIsMultiStatus(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := get(t, h, "nothing,missing", "batch=1")

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207", rec.Code)
	}
	var res []plainResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res[0].Result == nil || res[1].Error == nil {
		t.Errorf("unexpected results: %s", rec.Body)
	}
}

func TestBatchSameFailureKeepsStatus(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := get(t, h, "missing,missing", "batch=1")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProductionHidesInternalMessages(t *testing.T) {
	h := newServer(t, rpc.Options{Production: true, SuperJSON: true})
	rec := get(t, h, "boom", "")

	var res struct {
		Error struct {
			JSON errBody `json:"json"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(res.Error.JSON.Message, "exploded") {
		t.Errorf("internal message leaked: %q", res.Error.JSON.Message)
	}
	if res.Error.JSON.Data.Code != "INTERNAL_SERVER_ERROR" {
		t.Errorf("code = %q", res.Error.JSON.Data.Code)
	}
}

func TestServerErrorsAreCaptured(t *testing.T) {
	var captured []error
	h := newServer(t, rpc.Options{CaptureError: func(_ context.Context, err error) {
		captured = append(captured, err)
	}})

	get(t, h, "missing", "")
	get(t, h, "echo", "input="+url.QueryEscape(`{}`))
	if len(captured) != 0 {
		t.Fatalf("client errors captured: %v", captured)
	}

	get(t, h, "boom", "")
	if len(captured) != 1 || captured[0].Error() != "db exploded" {
		t.Errorf("captured = %v, want [db exploded]", captured)
	}
}

func TestMultipleProceduresRequireBatch(t *testing.T) {
	h := newServer(t, rpc.Options{})
	rec := get(t, h, "echo,nothing", "input="+url.QueryEscape(`{"name":"x"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	router := rpc.NewRouter(logger.Discard(), rpc.Options{})
	router.Query("x", func(context.Context, *rpc.Request) (any, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	router.Mutation("x", func(context.Context, *rpc.Request) (any, error) { return nil, nil })
}
