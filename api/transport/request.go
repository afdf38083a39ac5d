package transport

import "github.com/sellerhub/backend/domain"

// ProductCreateRequest creates a product, optionally with a caller-supplied id.
type ProductCreateRequest struct {
	ProductID    string  `json:"product_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	WeightG      float64 `json:"weight_g"`
	LengthCM     float64 `json:"length_cm"`
	HeightCM     float64 `json:"height_cm"`
	WidthCM      float64 `json:"width_cm"`
	CategoryName string  `json:"category_name"`
	PhotosQty    int     `json:"photos_qty"`
	AvailableQty int     `json:"available_qty"`
}

func (r ProductCreateRequest) Fields() *domain.ProductFields {
	return &domain.ProductFields{
		Title:        r.Title,
		Description:  r.Description,
		WeightG:      r.WeightG,
		LengthCM:     r.LengthCM,
		HeightCM:     r.HeightCM,
		WidthCM:      r.WidthCM,
		CategoryName: r.CategoryName,
		PhotosQty:    r.PhotosQty,
		AvailableQty: r.AvailableQty,
	}
}

// ProductMutateRequest is a partial product update guarded by the
// caller's expected version. Absent fields keep their current value.
type ProductMutateRequest struct {
	ExpectedVersion int `json:"expected_version"`
	domain.ProductPatch
}

// OrderCreateRequest creates an order, optionally with a caller-supplied id.
type OrderCreateRequest struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func (r OrderCreateRequest) Fields() *domain.OrderFields {
	status := domain.OrderStatus(r.Status)
	if r.Status == "" {
		status = domain.StatusPending
	}
	return &domain.OrderFields{
		CustomerID: r.CustomerID,
		Status:     status,
		Notes:      r.Notes,
	}
}

// OrderMutateRequest is a partial order field update guarded by the
// caller's expected version. Status changes go through the status routes.
type OrderMutateRequest struct {
	ExpectedVersion int `json:"expected_version"`
	domain.OrderPatch
}

// DeleteRequest carries the version guard for a soft delete.
type DeleteRequest struct {
	ExpectedVersion int `json:"expected_version"`
}

// StatusUpdateRequest requests an order status transition.
type StatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// NotesRequest carries the optional notes for cancel/refund.
type NotesRequest struct {
	Notes string `json:"notes"`
}
