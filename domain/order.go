package domain

import "time"

// OrderFields is the editable schema of an order.
type OrderFields struct {
	CustomerID  string      `json:"customer_id"`
	Status      OrderStatus `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	ApprovedAt  *time.Time  `json:"approved_at,omitempty"`
	ShippedAt   *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time  `json:"delivered_at,omitempty"`
}

func (f *OrderFields) Kind() EntityKind { return KindOrder }

func (f *OrderFields) Clone() FieldSet {
	if f == nil {
		return &OrderFields{}
	}
	clone := *f
	clone.ApprovedAt = cloneTime(f.ApprovedAt)
	clone.ShippedAt = cloneTime(f.ShippedAt)
	clone.DeliveredAt = cloneTime(f.DeliveredAt)
	return &clone
}

func (f *OrderFields) Validate() error {
	if f == nil || f.CustomerID == "" {
		return NewError(ErrCodeInvalid, "order customer_id is required")
	}
	if !f.Status.Valid() {
		return NewError(ErrCodeInvalid, "unknown order status")
	}
	return nil
}

func (f *OrderFields) Diff(other FieldSet) []string {
	o, ok := other.(*OrderFields)
	if !ok || f == nil || o == nil {
		return nil
	}
	var changed []string
	if f.CustomerID != o.CustomerID {
		changed = append(changed, "customer_id")
	}
	if f.Status != o.Status {
		changed = append(changed, "status")
	}
	if f.Notes != o.Notes {
		changed = append(changed, "notes")
	}
	if !timesEqual(f.ApprovedAt, o.ApprovedAt) {
		changed = append(changed, "approved_at")
	}
	if !timesEqual(f.ShippedAt, o.ShippedAt) {
		changed = append(changed, "shipped_at")
	}
	if !timesEqual(f.DeliveredAt, o.DeliveredAt) {
		changed = append(changed, "delivered_at")
	}
	return changed
}

// OrderPatch is a partial order update. Status changes normally go
// through the orderflow use case, which builds the patch itself.
type OrderPatch struct {
	CustomerID  *string      `json:"customer_id,omitempty"`
	Status      *OrderStatus `json:"status,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	ApprovedAt  *time.Time   `json:"approved_at,omitempty"`
	ShippedAt   *time.Time   `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time   `json:"delivered_at,omitempty"`
}

func (p *OrderPatch) Kind() EntityKind { return KindOrder }

func (p *OrderPatch) Validate() error {
	if p == nil {
		return NewError(ErrCodeInvalid, "empty order patch")
	}
	if p.CustomerID != nil && *p.CustomerID == "" {
		return NewError(ErrCodeInvalid, "order customer_id must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewError(ErrCodeInvalid, "unknown order status")
	}
	return nil
}

func (p *OrderPatch) Apply(current FieldSet) (FieldSet, error) {
	base, ok := current.(*OrderFields)
	if !ok {
		return nil, NewError(ErrCodeInvalid, "order patch applied to non-order record")
	}
	next := *base
	if p.CustomerID != nil {
		next.CustomerID = *p.CustomerID
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	if p.ApprovedAt != nil {
		next.ApprovedAt = cloneTime(p.ApprovedAt)
	}
	if p.ShippedAt != nil {
		next.ShippedAt = cloneTime(p.ShippedAt)
	}
	if p.DeliveredAt != nil {
		next.DeliveredAt = cloneTime(p.DeliveredAt)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (p *OrderPatch) SubmittedValues(current FieldSet) FieldSet {
	applied, err := p.Apply(current)
	if err != nil {
		return current.Clone()
	}
	return applied
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
