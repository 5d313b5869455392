package suppliers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/suppliers-api/internal/apikey"
	"github.com/odyssey-erp/suppliers-api/internal/i18n"
	"github.com/odyssey-erp/suppliers-api/internal/platform/httpx"
	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

const maxBodyBytes = 1 << 20

// Operation outcomes reported to the OperationRecorder.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// Authenticator decides whether a presented API key is accepted.
type Authenticator interface {
	Validate(key string) bool
}

// HandlerParams groups dependencies for the supplier handler. Events and
// Metrics are optional.
type HandlerParams struct {
	Logger   *slog.Logger
	Store    Store
	Auth     Authenticator
	Messages *i18n.Catalog
	BasePath string
	Events   EventPublisher
	Metrics  OperationRecorder
}

// Handler serves the suppliers JSON API.
type Handler struct {
	logger    *slog.Logger
	store     Store
	auth      Authenticator
	messages  *i18n.Catalog
	basePath  string
	events    EventPublisher
	metrics   OperationRecorder
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(params HandlerParams) *Handler {
	h := &Handler{
		logger:    params.Logger,
		store:     params.Store,
		auth:      params.Auth,
		messages:  params.Messages,
		basePath:  params.BasePath,
		events:    params.Events,
		metrics:   params.Metrics,
		validator: newValidator(),
		now:       time.Now,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.events == nil {
		h.events = noopPublisher{}
	}
	if h.metrics == nil {
		h.metrics = noopRecorder{}
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := h.messages.Printer(r.Header.Get("Accept-Language"))

	header := w.Header()
	header.Set("Content-Type", httpx.ContentTypeJSON)
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "X-API-Key, Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("supplier request panicked", "panic", rec, "method", r.Method, "path", r.URL.Path)
			httpx.Error(w, http.StatusInternalServerError, p.Sprintf(i18n.MsgInternalError, fmt.Sprint(rec)))
		}
	}()

	if !h.auth.Validate(apikey.FromRequest(r)) {
		h.logger.Warn("api key rejected", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		httpx.RespondError(w, shared.ErrUnauthorized, p.Sprintf(i18n.MsgUnauthorized))
		return
	}

	id := ExtractID(r.URL.Path, h.basePath)

	switch r.Method {
	case http.MethodGet:
		if id > 0 {
			h.get(w, r, p, id)
			return
		}
		h.list(w, r, p)
	case http.MethodPost:
		h.create(w, r, p)
	case http.MethodPut:
		h.update(w, r, p, id)
	case http.MethodDelete:
		h.delete(w, r, p, id)
	default:
		httpx.RespondError(w, shared.ErrMethodNotAllowed, p.Sprintf(i18n.MsgMethodNotAllowed))
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, p *message.Printer) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.unhandled(w, p, "list", err)
		return
	}
	if items == nil {
		items = []Supplier{}
	}
	count := len(items)
	h.metrics.ObserveOperation("list", outcomeOK)
	httpx.Success(w, http.StatusOK, httpx.Envelope{Data: items, Count: &count})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, p *message.Printer, id int64) {
	supplier, err := h.store.Get(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		h.metrics.ObserveOperation("get", outcomeNotFound)
		httpx.RespondError(w, err, p.Sprintf(i18n.MsgSupplierNotFound))
		return
	}
	if err != nil {
		h.unhandled(w, p, "get", err)
		return
	}
	h.metrics.ObserveOperation("get", outcomeOK)
	httpx.Success(w, http.StatusOK, httpx.Envelope{Data: supplier})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, p *message.Printer) {
	var in Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.metrics.ObserveOperation("create", outcomeInvalid)
		httpx.RespondError(w, err, p.Sprintf(i18n.MsgInvalidJSON))
		return
	}
	if err := h.validateCreate(in); err != nil {
		h.metrics.ObserveOperation("create", outcomeInvalid)
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			httpx.RespondError(w, fieldErr, p.Sprintf(i18n.MsgFieldRequired, fieldErr.Field))
			return
		}
		h.unhandled(w, p, "create", err)
		return
	}

	id, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create supplier failed", "error", err)
		h.metrics.ObserveOperation("create", outcomeError)
		httpx.Error(w, http.StatusInternalServerError, p.Sprintf(i18n.MsgCreateFailed))
		return
	}

	h.publish(r.Context(), ActionCreated, id)
	h.metrics.ObserveOperation("create", outcomeOK)
	httpx.Success(w, http.StatusCreated, httpx.Envelope{Message: p.Sprintf(i18n.MsgCreated), ID: id})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, p *message.Printer, id int64) {
	if !h.requireExisting(w, r, p, "update", id) {
		return
	}

	var in Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.metrics.ObserveOperation("update", outcomeInvalid)
		httpx.RespondError(w, err, p.Sprintf(i18n.MsgInvalidJSON))
		return
	}

	if err := h.store.Update(r.Context(), id, in); err != nil {
		h.logger.Error("update supplier failed", "error", err, "id", id)
		h.metrics.ObserveOperation("update", outcomeError)
		httpx.Error(w, http.StatusInternalServerError, p.Sprintf(i18n.MsgUpdateFailed))
		return
	}

	h.publish(r.Context(), ActionUpdated, id)
	h.metrics.ObserveOperation("update", outcomeOK)
	httpx.Success(w, http.StatusOK, httpx.Envelope{Message: p.Sprintf(i18n.MsgUpdated)})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, p *message.Printer, id int64) {
	if !h.requireExisting(w, r, p, "delete", id) {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete supplier failed", "error", err, "id", id)
		h.metrics.ObserveOperation("delete", outcomeError)
		httpx.Error(w, http.StatusInternalServerError, p.Sprintf(i18n.MsgDeleteFailed))
		return
	}

	h.publish(r.Context(), ActionDeleted, id)
	h.metrics.ObserveOperation("delete", outcomeOK)
	httpx.Success(w, http.StatusOK, httpx.Envelope{Message: p.Sprintf(i18n.MsgDeleted)})
}

// requireExisting answers 400 for a missing id and 404 for an unknown one.
// It reports whether the caller may proceed.
func (h *Handler) requireExisting(w http.ResponseWriter, r *http.Request, p *message.Printer, op string, id int64) bool {
	if id <= 0 {
		h.metrics.ObserveOperation(op, outcomeInvalid)
		httpx.RespondError(w, shared.ErrValidation, p.Sprintf(i18n.MsgIDMissing))
		return false
	}
	exists, err := h.store.Exists(r.Context(), id)
	if err != nil {
		h.unhandled(w, p, op, err)
		return false
	}
	if !exists {
		h.metrics.ObserveOperation(op, outcomeNotFound)
		httpx.RespondError(w, shared.ErrNotFound, p.Sprintf(i18n.MsgSupplierNotFound))
		return false
	}
	return true
}

// unhandled reports a fault outside the explicit outcomes, embedding its text.
func (h *Handler) unhandled(w http.ResponseWriter, p *message.Printer, op string, err error) {
	h.logger.Error("supplier request failed", "operation", op, "error", err)
	h.metrics.ObserveOperation(op, outcomeError)
	httpx.Error(w, http.StatusInternalServerError, p.Sprintf(i18n.MsgInternalError, err.Error()))
}

func (h *Handler) publish(ctx context.Context, action Action, id int64) {
	ev := Event{ID: uuid.NewString(), Action: action, SupplierID: id, At: h.now().UTC()}
	if err := h.events.PublishSupplierEvent(ctx, ev); err != nil {
		h.logger.Warn("publish supplier event", "error", err, "action", string(action), "id", id)
	}
}
