package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-trx-invoices/internal/events"
	"github.com/ariefcatur/go-trx-invoices/internal/logger"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Emitter publishes change events. Implemented by *events.Bus and events.Nop.
type Emitter interface {
	Emit(ctx context.Context, ev events.Event)
}

// Idempotency remembers which resource an Idempotency-Key created.
type Idempotency interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, id string) error
}

type Renderer interface {
	Render(agg trx.Aggregate) ([]byte, error)
}

const HeaderIdempotencyKey = "Idempotency-Key"

type API struct {
	Store    trx.Store
	Events   Emitter
	Idem     Idempotency // nil = idempotency off
	Renderer Renderer
	Log      *logger.Logger
}

func (a *API) Register(r chi.Router) {
	r.Route("/trx", func(r chi.Router) {
		r.Post("/products", a.createProduct)
		r.Get("/products", a.listProducts)
		r.Get("/products/{id}", a.getProduct)
		r.Put("/products/{id}", a.updateProduct)
		r.Delete("/products/{id}", a.deleteProduct)

		r.Post("/invoices", a.createInvoice)
		r.Get("/invoices", a.listInvoices)
		r.Get("/invoices/{id}", a.getInvoice)
		r.Put("/invoices/{id}", a.updateInvoice)
		r.Delete("/invoices/{id}", a.deleteInvoice)

		r.Get("/generate-pdf/{id}", a.generatePDF)
	})
}

// pathID returns the {id} param, or writes 400 with msg when it is not an ObjectID.
func pathID(w http.ResponseWriter, r *http.Request, msg string) (string, bool) {
	id := chi.URLParam(r, "id")
	if !trx.ValidID(id) {
		writeInvalid(w, fieldError{Field: "id", Message: msg})
		return "", false
	}
	return id, true
}

// fail maps store errors: ErrNotFound -> 404 notFound, sisanya 500.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, trx.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, trx.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid ID")
	default:
		a.internal(w, r, err, "Internal Server Error")
	}
}

func (a *API) internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	a.Log.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, msg)
}

func (a *API) emit(r *http.Request, topic, typ, id string, payload any) {
	if a.Events == nil {
		return
	}
	a.Events.Emit(r.Context(), events.Event{
		Topic:   topic,
		Type:    typ,
		ID:      id,
		TraceID: middleware.GetReqID(r.Context()),
		Payload: payload,
	})
}

// replayed looks up a previous create for the request's Idempotency-Key.
// Redis cuma fast path: error di sini di-log lalu request diproses normal.
func (a *API) replayed(r *http.Request, scope string) (string, bool) {
	key := r.Header.Get(HeaderIdempotencyKey)
	if a.Idem == nil || key == "" {
		return "", false
	}
	id, ok, err := a.Idem.Lookup(r.Context(), scope, key)
	if err != nil {
		a.Log.Warn("idempotency lookup failed", "scope", scope, "error", err)
		return "", false
	}
	return id, ok
}

func (a *API) remember(r *http.Request, scope, id string) {
	key := r.Header.Get(HeaderIdempotencyKey)
	if a.Idem == nil || key == "" {
		return
	}
	if err := a.Idem.Remember(r.Context(), scope, key, id); err != nil {
		a.Log.Warn("idempotency remember failed", "scope", scope, "error", err)
	}
}
