package rest

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := ProductsFilterFromQuery(r.URL.Query())
	if err != nil {
		writeRequestError(w, err)
		return
	}

	products, err := h.quotes.ListProducts(r.Context(), filter)
	if err != nil {
		log.Printf("[HTTP] listProducts error: %v", err)
		ErrorInternal(w, "failed to list products")
		return
	}

	Success(w, "", products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.quotes.GetProduct(r.Context(), id)
	if err != nil {
		productError(w, "getProduct", err)
		return
	}

	Success(w, "", product)
}

func (h *Handler) productQuote(w http.ResponseWriter, r *http.Request) {
	in, err := QuoteInputFromQuery(r.URL.Query())
	if err != nil {
		writeRequestError(w, err)
		return
	}

	result, err := h.quotes.ProductQuote(r.Context(), chi.URLParam(r, "id"), *in)
	if err != nil {
		productError(w, "productQuote", err)
		return
	}

	Success(w, "", result)
}

func productError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "product not found")
		return
	}
	log.Printf("[HTTP] %s error: %v", op, err)
	ErrorInternal(w, "failed to load product")
}
