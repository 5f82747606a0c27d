package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-trx-invoices/internal/export"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
)

const (
	msgInvoiceNotFound = "Invoice not found"
	msgInvalidInvoice  = "Invalid invoice ID"
	msgPDFFailed       = "Error generating PDF"
)

func invoicePayload(inv trx.Invoice) trx.InvoiceChangedPayload {
	return trx.InvoiceChangedPayload{InvoiceID: inv.ID, Customer: inv.Customer, ProductIDs: trx.ProductIDs(inv)}
}

// aggregate prices inv against the current catalog. On failure the 500 is
// already written.
func (a *API) aggregate(w http.ResponseWriter, r *http.Request, inv trx.Invoice) (invoiceView, bool) {
	agg, err := trx.AggregateInvoice(r.Context(), inv, a.Store)
	if err != nil {
		a.internal(w, r, err, "Internal Server Error")
		return invoiceView{}, false
	}
	return newInvoiceView(agg), true
}

func (a *API) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceReq
	if !bind(w, r, &req, invoiceMsgs) {
		return
	}
	inv, err := req.invoice()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ctx := r.Context()
	if id, ok := a.replayed(r, "invoice"); ok {
		existing, err := a.Store.GetInvoice(ctx, id)
		switch {
		case err == nil:
			if view, ok := a.aggregate(w, r, existing); ok {
				writeJSON(w, http.StatusOK, okResp{Message: "Invoice created successfully", Data: view})
			}
			return
		case !errors.Is(err, trx.ErrNotFound):
			a.fail(w, r, err, msgInvoiceNotFound)
			return
		}
	}

	created, err := a.Store.CreateInvoice(ctx, inv)
	if err != nil {
		a.fail(w, r, err, msgInvoiceNotFound)
		return
	}
	a.remember(r, "invoice", created.ID)
	a.emit(r, trx.TopicInvoiceChanged, trx.EventInvoiceCreated, created.ID, invoicePayload(created))

	view, ok := a.aggregate(w, r, created)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, okResp{Message: "Invoice created successfully", Data: view})
}

func (a *API) listInvoices(w http.ResponseWriter, r *http.Request) {
	invs, err := a.Store.ListInvoices(r.Context())
	if err != nil {
		a.fail(w, r, err, msgInvoiceNotFound)
		return
	}
	aggs, err := trx.AggregateAll(r.Context(), invs, a.Store)
	if err != nil {
		a.internal(w, r, err, "Internal Server Error")
		return
	}
	views := make([]invoiceView, 0, len(aggs))
	for _, agg := range aggs {
		views = append(views, newInvoiceView(agg))
	}
	writeJSON(w, http.StatusOK, struct {
		Error bool          `json:"error"`
		Data  []invoiceView `json:"data"`
	}{Data: views})
}

func (a *API) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidInvoice)
	if !ok {
		return
	}
	inv, err := a.Store.GetInvoice(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, msgInvoiceNotFound)
		return
	}
	if view, ok := a.aggregate(w, r, inv); ok {
		writeJSON(w, http.StatusOK, view)
	}
}

func (a *API) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidInvoice)
	if !ok {
		return
	}
	var req updateInvoiceReq
	if !bind(w, r, &req, updateInvoiceMsgs) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	updated, err := a.Store.UpdateInvoice(r.Context(), id, patch)
	if err != nil {
		a.fail(w, r, err, msgInvoiceNotFound)
		return
	}
	a.emit(r, trx.TopicInvoiceChanged, trx.EventInvoiceUpdated, updated.ID, invoicePayload(updated))

	if view, ok := a.aggregate(w, r, updated); ok {
		writeJSON(w, http.StatusOK, view)
	}
}

func (a *API) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidInvoice)
	if !ok {
		return
	}
	if err := a.Store.DeleteInvoice(r.Context(), id); err != nil {
		a.fail(w, r, err, msgInvoiceNotFound)
		return
	}
	a.emit(r, trx.TopicInvoiceChanged, trx.EventInvoiceDeleted, id, trx.InvoiceChangedPayload{InvoiceID: id})

	writeJSON(w, http.StatusOK, okResp{Message: "Invoice deleted successfully"})
}

func (a *API) generatePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidInvoice)
	if !ok {
		return
	}
	ctx := r.Context()
	inv, err := a.Store.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, trx.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgInvoiceNotFound)
			return
		}
		a.internal(w, r, err, msgPDFFailed)
		return
	}
	agg, err := trx.AggregateInvoice(ctx, inv, a.Store)
	if err != nil {
		a.internal(w, r, err, msgPDFFailed)
		return
	}
	// Render menolak aggregate dengan product yang sudah hilang
	doc, err := a.Renderer.Render(agg)
	if err != nil {
		a.internal(w, r, err, msgPDFFailed)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(inv.ID)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
