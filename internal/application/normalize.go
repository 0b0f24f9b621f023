package application

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shopmirror/internal/domain"
)

// Normalization maps remote payload shapes onto mirror records. The polling
// and webhook paths share these functions, so both produce identical records
// for the same snapshot. Monetary fields default to zero when missing or
// unparseable; bad numeric input is never an error.

// amount is a monetary value that tolerates string, numeric, null and
// garbage JSON representations, defaulting to zero.
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = amount(f)
	return nil
}

type productPayload struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Status   string      `json:"status"`
	Variants []struct {
		Price amount `json:"price"`
		SKU   string `json:"sku"`
	} `json:"variants"`
}

type customerPayload struct {
	ID         json.Number `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	TotalSpent amount      `json:"total_spent"`
}

type orderPayload struct {
	ID              json.Number      `json:"id"`
	TotalPrice      amount           `json:"total_price"`
	Currency        string           `json:"currency"`
	FinancialStatus string           `json:"financial_status"`
	CreatedAt       string           `json:"created_at"`
	Customer        *customerPayload `json:"customer"`
}

// NormalizeProduct maps a remote product payload onto a mirror record.
func NormalizeProduct(tenantID string, raw []byte) (*domain.Product, error) {
	var p productPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse product payload: %w", err)
	}
	if p.ID.String() == "" {
		return nil, fmt.Errorf("product payload has no id")
	}

	product := &domain.Product{
		TenantID:   tenantID,
		ExternalID: p.ID.String(),
		Title:      p.Title,
		Status:     p.Status,
	}
	if product.Status == "" {
		product.Status = "active"
	}
	if len(p.Variants) > 0 {
		product.Price = float64(p.Variants[0].Price)
		product.SKU = p.Variants[0].SKU
	}
	return product, nil
}

// NormalizeCustomer maps a remote customer payload onto a mirror record.
func NormalizeCustomer(tenantID string, raw []byte) (*domain.Customer, error) {
	var c customerPayload
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse customer payload: %w", err)
	}
	if c.ID.String() == "" {
		return nil, fmt.Errorf("customer payload has no id")
	}

	return &domain.Customer{
		TenantID:   tenantID,
		ExternalID: c.ID.String(),
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		TotalSpent: float64(c.TotalSpent),
	}, nil
}

// NormalizeOrder maps a remote order payload onto a mirror record. When the
// payload embeds a customer reference, a customer snapshot derived from the
// order's spend is returned alongside; otherwise the second result is nil.
func NormalizeOrder(tenantID string, raw []byte) (*domain.Order, *domain.Customer, error) {
	var o orderPayload
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, nil, fmt.Errorf("failed to parse order payload: %w", err)
	}
	if o.ID.String() == "" {
		return nil, nil, fmt.Errorf("order payload has no id")
	}

	order := &domain.Order{
		TenantID:   tenantID,
		ExternalID: o.ID.String(),
		Total:      float64(o.TotalPrice),
		Currency:   o.Currency,
		Status:     o.FinancialStatus,
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}
	if order.Status == "" {
		order.Status = "pending"
	}
	if t, err := time.Parse(time.RFC3339, o.CreatedAt); err == nil {
		order.PlacedAt = t
	}

	var customer *domain.Customer
	if o.Customer != nil && o.Customer.ID.String() != "" {
		customer = &domain.Customer{
			TenantID:   tenantID,
			ExternalID: o.Customer.ID.String(),
			Email:      o.Customer.Email,
			FirstName:  o.Customer.FirstName,
			LastName:   o.Customer.LastName,
			TotalSpent: float64(o.TotalPrice),
		}
	}

	return order, customer, nil
}
