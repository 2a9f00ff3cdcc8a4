// Package api provides the HTTP JSON API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/analysis/chartdata"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/source"
)

// Service is what the handlers need from the analysis service.
type Service interface {
	SessionData(ctx context.Context, sessionKey int) (*model.SessionData, error)
	Analyze(ctx context.Context, sessionKey int, drivers []int) (*model.SessionAnalysis, error)
	Subscribe() <-chan *model.SessionAnalysis
	Unsubscribe(ch <-chan *model.SessionAnalysis)
}

type Handler struct {
	svc          Service
	l            *log.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

type Option func(*Handler)

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) {
		h.l = l
	}
}

// WithPingInterval sets how often idle websocket streams are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(h *Handler) {
		h.pingInterval = d
	}
}

func New(svc Service, opts ...Option) *Handler {
	ret := &Handler{
		svc:          svc,
		l:            log.Default(),
		pingInterval: 30 * time.Second,
		upgrader: websocket.Upgrader{
			// origins are checked by the cors handler of the server
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.l = ret.l.Named("api")
	return ret
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/api/v1/sessions/{sessionKey}", func(r chi.Router) {
		r.Get("/analysis", h.analysis)
		r.Get("/laps", h.laps)
		r.Get("/degradation", h.degradation)
		r.Get("/stints", h.stints)
		r.Get("/drivers/{driverNumber}/best-lap", h.bestLap)
		r.Get("/sectors", h.sectors)
		r.Get("/pit-laps", h.pitLaps)
		r.Get("/stream", h.stream)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, http.StatusNotFound, errors.New("not found"))
	})
	return r
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger(r).Error("could not encode response", log.ErrorField(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger(r).Debug("could not write response", log.ErrorField(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger(r).Error("request failed", log.ErrorField(err))
	}
	h.writeJSON(w, r, status, errorResponse{
		Error:     err.Error(),
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// fail maps err to a http status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var bad *badRequestError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &bad), errors.Is(err, chartdata.ErrUnknownMode):
		status = http.StatusBadRequest
	case errors.Is(err, source.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, source.ErrSessionInProgress):
		status = http.StatusConflict
	case errors.Is(err, source.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, source.ErrUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, model.ErrInvalidLapNumber), errors.Is(err, model.ErrInvalidStint):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		status = 499
	}
	h.writeError(w, r, status, err)
}

func (h *Handler) logger(r *http.Request) *log.Logger {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return h.l.With(log.String("requestId", id))
	}
	return h.l
}

func sessionKeyParam(r *http.Request) (int, error) {
	return positiveInt(chi.URLParam(r, "sessionKey"), "session key")
}

func positiveInt(s, name string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, badRequest("invalid %s %q", name, s)
	}
	return v, nil
}

// optionalInt returns 0 for an empty value.
func optionalInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	return positiveInt(s, name)
}

// parseDrivers reads a comma separated driver list like "1,44".
func parseDrivers(r *http.Request) ([]int, error) {
	s := strings.TrimSpace(r.URL.Query().Get("drivers"))
	if s == "" {
		return []int{}, nil
	}
	parts := lo.Filter(strings.Split(s, ","), func(p string, _ int) bool {
		return strings.TrimSpace(p) != ""
	})
	ret := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return nil, badRequest("invalid driver number %q", p)
		}
		ret = append(ret, v)
	}
	return lo.Uniq(ret), nil
}

func errNoValidLap(driver int) error {
	return fmt.Errorf("no valid lap for driver %d", driver)
}
