package httpx

import (
	"errors"
	"net/http"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
)

const (
	msgProductNotFound = "Product not found"
	msgInvalidProduct  = "Invalid product ID"
)

type productUpdatedResp struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Product trx.Product `json:"product"`
}

func productPayload(p trx.Product) trx.ProductChangedPayload {
	price := p.Price
	return trx.ProductChangedPayload{ProductID: p.ID, Name: p.Name, Price: &price}
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if !bind(w, r, &req, createProductMsgs) {
		return
	}
	p, err := req.product()
	if err != nil {
		writeInvalid(w, fieldError{Field: "price", Message: createProductMsgs.lookup("price")})
		return
	}

	ctx := r.Context()
	if id, ok := a.replayed(r, "product"); ok {
		existing, err := a.Store.GetProduct(ctx, id)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, okResp{Message: "Product added successfully.", Data: existing})
			return
		case !errors.Is(err, trx.ErrNotFound):
			a.fail(w, r, err, msgProductNotFound)
			return
		}
		// product lama sudah dihapus: buat ulang
	}

	created, err := a.Store.CreateProduct(ctx, p)
	if err != nil {
		a.fail(w, r, err, msgProductNotFound)
		return
	}
	a.remember(r, "product", created.ID)
	a.emit(r, trx.TopicProductChanged, trx.EventProductCreated, created.ID, productPayload(created))

	writeJSON(w, http.StatusCreated, okResp{Message: "Product added successfully.", Data: created})
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := a.Store.ListProducts(r.Context())
	if err != nil {
		a.fail(w, r, err, msgProductNotFound)
		return
	}
	if ps == nil {
		ps = []trx.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidProduct)
	if !ok {
		return
	}
	p, err := a.Store.GetProduct(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidProduct)
	if !ok {
		return
	}
	var req updateProductReq
	if !bind(w, r, &req, updateProductMsgs) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeInvalid(w, fieldError{Field: "price", Message: updateProductMsgs.lookup("price")})
		return
	}

	ctx := r.Context()
	// harga lama hanya untuk payload event
	var old *trx.Product
	if patch.Price != nil {
		prev, err := a.Store.GetProduct(ctx, id)
		if err != nil {
			a.fail(w, r, err, msgProductNotFound)
			return
		}
		old = &prev
	}

	updated, err := a.Store.UpdateProduct(ctx, id, patch)
	if err != nil {
		a.fail(w, r, err, msgProductNotFound)
		return
	}
	payload := productPayload(updated)
	if old != nil {
		oldPrice := old.Price
		payload.OldPrice = &oldPrice
	}
	a.emit(r, trx.TopicProductChanged, trx.EventProductUpdated, updated.ID, payload)

	writeJSON(w, http.StatusOK, productUpdatedResp{Message: "Product updated successfully", Product: updated})
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgInvalidProduct)
	if !ok {
		return
	}
	// invoice yang mereferensikan product ini sengaja tidak disentuh
	if err := a.Store.DeleteProduct(r.Context(), id); err != nil {
		a.fail(w, r, err, msgProductNotFound)
		return
	}
	a.emit(r, trx.TopicProductChanged, trx.EventProductDeleted, id, trx.ProductChangedPayload{ProductID: id})

	writeJSON(w, http.StatusOK, okResp{Message: "Product deleted successfully"})
}
