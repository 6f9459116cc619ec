package handlers

import (
	"context"
	"net/http"

	"vidly/cache"
	"vidly/models"
	"vidly/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const customersListKey = "customers:list"

// CustomerHandler handles customer-related operations
type CustomerHandler struct {
	customers *store.CustomerStore
	cache     *cache.ResponseCache
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers *store.CustomerStore, cache *cache.ResponseCache) *CustomerHandler {
	return &CustomerHandler{customers: customers, cache: cache}
}

// GetCustomers handles GET /customers
func (h *CustomerHandler) GetCustomers(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(r, "info", "Listing customers")
	serveCached(w, r, h.cache, customersListKey, listCacheTTL, "customer", func() (interface{}, error) {
		return h.customers.List(ctx)
	})
}

// GetCustomer handles GET /customers/{id}
func (h *CustomerHandler) GetCustomer(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logRequest(r, "info", "Getting customer", zap.String("customer_id", id))
	serveCached(w, r, h.cache, itemKey("customer", id), itemCacheTTL, "customer", func() (interface{}, error) {
		return h.customers.Get(ctx, id)
	})
}

// CreateCustomer handles POST /customers
func (h *CustomerHandler) CreateCustomer(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "customer")
		return
	}

	customer, err := h.customers.Create(ctx, req)
	if err != nil {
		writeError(w, r, err, "customer")
		return
	}

	h.cache.Delete(customersListKey)
	logRequest(r, "info", "Customer created successfully", zap.String("customer_id", customer.ID))
	writeJSON(w, http.StatusOK, customer)
}

// UpdateCustomer handles PUT /customers/{id}
func (h *CustomerHandler) UpdateCustomer(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.CustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "customer")
		return
	}

	customer, err := h.customers.Update(ctx, id, req)
	if err != nil {
		writeError(w, r, err, "customer")
		return
	}

	h.cache.Delete(customersListKey, "customer:"+customer.ID)
	logRequest(r, "info", "Customer updated successfully", zap.String("customer_id", customer.ID))
	writeJSON(w, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /customers/{id}
func (h *CustomerHandler) DeleteCustomer(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	customer, err := h.customers.Delete(ctx, id)
	if err != nil {
		writeError(w, r, err, "customer")
		return
	}

	h.cache.Delete(customersListKey, "customer:"+customer.ID)
	logRequest(r, "info", "Customer deleted successfully", zap.String("customer_id", customer.ID))
	writeJSON(w, http.StatusOK, customer)
}
