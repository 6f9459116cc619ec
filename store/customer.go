package store

import (
	"context"
	"fmt"

	"vidly/models"

	"github.com/jmoiron/sqlx"
)

const customerColumns = "id, name, phone, is_gold_member"

// CustomerStore persists customers
type CustomerStore struct {
	db *sqlx.DB
}

// NewCustomerStore creates a new customer store
func NewCustomerStore(db *sqlx.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// List returns all customers ordered by name
func (s *CustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if err := s.db.SelectContext(ctx, &customers, "SELECT "+customerColumns+" FROM customers ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// Get returns the customer with the given id
func (s *CustomerStore) Get(ctx context.Context, id string) (models.Customer, error) {
	var customer models.Customer
	id, ok := normalizeID(id)
	if !ok {
		return customer, ErrNotFound
	}

	err := s.db.GetContext(ctx, &customer, s.db.Rebind("SELECT "+customerColumns+" FROM customers WHERE id = ?"), id)
	if err != nil {
		return customer, notFound(err)
	}
	return customer, nil
}

// Create inserts a new customer
func (s *CustomerStore) Create(ctx context.Context, req models.CustomerRequest) (models.Customer, error) {
	customer := models.Customer{
		ID:           newID(),
		Name:         req.Name,
		Phone:        req.Phone,
		IsGoldMember: req.IsGoldMember,
	}

	_, err := s.db.NamedExecContext(ctx,
		"INSERT INTO customers (id, name, phone, is_gold_member) VALUES (:id, :name, :phone, :is_gold_member)",
		customer)
	if err != nil {
		return models.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return customer, nil
}

// Update replaces a customer's fields
func (s *CustomerStore) Update(ctx context.Context, id string, req models.CustomerRequest) (models.Customer, error) {
	id, ok := normalizeID(id)
	if !ok {
		return models.Customer{}, ErrNotFound
	}

	customer := models.Customer{
		ID:           id,
		Name:         req.Name,
		Phone:        req.Phone,
		IsGoldMember: req.IsGoldMember,
	}
	result, err := s.db.NamedExecContext(ctx,
		"UPDATE customers SET name = :name, phone = :phone, is_gold_member = :is_gold_member WHERE id = :id",
		customer)
	if err != nil {
		return models.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.Customer{}, ErrNotFound
	}
	return customer, nil
}

// Delete removes a customer and returns what was removed
func (s *CustomerStore) Delete(ctx context.Context, id string) (models.Customer, error) {
	var customer models.Customer
	id, ok := normalizeID(id)
	if !ok {
		return customer, ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return customer, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, &customer, tx.Rebind("SELECT "+customerColumns+" FROM customers WHERE id = ?"), id); err != nil {
		return customer, notFound(err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM customers WHERE id = ?"), id); err != nil {
		return customer, fmt.Errorf("delete customer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return customer, fmt.Errorf("commit: %w", err)
	}
	return customer, nil
}
