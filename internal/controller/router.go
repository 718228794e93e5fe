package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
)

// Handler returns a payload that is wrapped in the response envelope, or an error
type Handler func(ctx context.Context, r *http.Request) (any, error)

// Middleware wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order, the first one runs outermost
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Generator generates correlation ids
type Generator interface {
	Generate() string
}

// Router wraps httprouter with the json envelope and the middleware chain
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

func NewRouter(ids Generator) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareCorrelationID(ids),
			middlewareLogging,
		},
	}
}

func (r *Router) GET(path string, h Handler) {
	r.endpoint(http.MethodGet, path, h)
}

func (r *Router) POST(path string, h Handler) {
	r.endpoint(http.MethodPost, path, h)
}

// Handle registers a raw handler, used for non json responses
func (r *Router) Handle(method, path string, h http.Handler) {
	r.hr.Handler(method, path, Chain(h, r.mws...))
}

func (r *Router) endpoint(method, path string, h Handler) {
	r.Handle(method, path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(req.Context(), req)
		if err != nil {
			writeError(req.Context(), w, err)
			return
		}
		writeOK(w, resp)
	}))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

// Param reads a path parameter
func Param(r *http.Request, key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeOK(w http.ResponseWriter, resp any) {
	msg := "request has been successfully"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}
	writeJSON(w, successResponse{Message: msg, Data: resp}, http.StatusOK)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var cerr *Error
	if !errors.As(err, &cerr) {
		zerolog.Ctx(ctx).Err(err).Msg("unhandled error")
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: cerr.Msg()}
	switch cerr.Code() {
	case CodeInvalidFormat, CodeInvalidInput, CodeUnavailable:
		if cerr.err != nil {
			resp.Error = cerr.err.Error()
		}
	default:
		zerolog.Ctx(ctx).Err(cerr.err).Msg("request failed")
	}
	writeJSON(w, resp, cerr.StatusCode())
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.L.Err(err).Msg("failed to encode response")
	}
}

const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
)

func normalizeCID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	const maxLen = 128
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return v
}

// middlewareCorrelationID attaches a logger carrying the correlation id to
// the request context
func middlewareCorrelationID(ids Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = normalizeCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && ids != nil {
				cid = ids.Generate()
			}

			logger := logging.L.With().Str("cid", cid).Logger()
			w.Header().Set(HeaderCorrelationID, cid)
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// middlewareLogging logs one line per request. Bodies are not logged, they
// can carry signatures and amounts.
func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
		if route == "" {
			route = r.URL.Path
		}
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		zerolog.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("route", route).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	})
}

func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logging.L.Error().
					Interface("panic", rvr).
					Bytes("stack", debug.Stack()).
					Msg("panic on the server")
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
