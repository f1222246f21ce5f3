package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront-api/internal/domain"
	"storefront-api/internal/http/response"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
)

type CatalogHandler struct {
	catalog      *service.CatalogService
	exposeErrors bool
}

func NewCatalogHandler(catalog *service.CatalogService, exposeErrors bool) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, exposeErrors: exposeErrors}
}

type productRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int    `json:"stock"`
	Published   bool   `json:"published"`
}

type pagedPayload struct {
	Items      any   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	res, err := h.catalog.ListPublished(page, pageSize, r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	response.JSON(w, r, http.StatusOK, pagedResult(res))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	p, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	if !p.Published {
		// unpublished products are invisible on the public surface
		response.Error(w, r, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}

func (h *CatalogHandler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	res, err := h.catalog.ListAll(page, pageSize)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	response.JSON(w, r, http.StatusOK, pagedResult(res))
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Title == "" || req.PriceCents < 0 {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "title required and price must be non-negative", nil)
		return
	}
	p := &domain.Product{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Stock:       req.Stock,
		Published:   req.Published,
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if err := h.catalog.Create(p); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	response.JSON(w, r, http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	p, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Title != "" {
		p.Title = req.Title
	}
	p.Description = req.Description
	if req.PriceCents >= 0 {
		p.PriceCents = req.PriceCents
	}
	if req.Currency != "" {
		p.Currency = req.Currency
	}
	p.Stock = req.Stock
	p.Published = req.Published
	if err := h.catalog.Update(p); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.catalog.Delete(id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", h.details(err))
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CatalogHandler) details(err error) any {
	if h.exposeErrors {
		return err.Error()
	}
	return nil
}

func parseID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func pagedResult[T any](res repository.PageResult[T]) pagedPayload {
	return pagedPayload{
		Items:      res.Items,
		Page:       res.Page,
		PageSize:   res.PageSize,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	}
}
