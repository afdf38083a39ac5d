package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind discriminates the record types served by the store.
type EntityKind string

const (
	KindProduct EntityKind = "product"
	KindOrder   EntityKind = "order"
)

func (k EntityKind) Valid() bool {
	return k == KindProduct || k == KindOrder
}

// FieldSet is the typed field schema of one entity kind. Every kind has
// its own named-field struct so conflict diffing stays a field-by-field
// comparison instead of a dynamic key enumeration.
type FieldSet interface {
	Kind() EntityKind
	Clone() FieldSet
	Validate() error
	// Diff lists the field names whose values differ from other.
	Diff(other FieldSet) []string
}

// Patch carries a partial update for one entity kind. Nil members leave
// the current value untouched.
type Patch interface {
	Kind() EntityKind
	Validate() error
	// Apply layers the patch onto current and returns the resulting set.
	Apply(current FieldSet) (FieldSet, error)
	// SubmittedValues materializes the patch for conflict reporting,
	// falling back to current where the patch is silent.
	SubmittedValues(current FieldSet) FieldSet
}

// Record is a versioned entity. Version starts at 1 and increases by
// exactly one on every successful mutation; it never decreases, skips or
// gets reused after a rejected compare-and-swap.
type Record struct {
	ID        string     `json:"id"`
	Kind      EntityKind `json:"kind"`
	Version   int        `json:"version"`
	Fields    FieldSet   `json:"fields"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (r *Record) Touch(actor string) {
	if r == nil {
		return
	}
	r.UpdatedAt = time.Now().UTC()
	r.UpdatedBy = actor
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.UpdatedAt
	}
}

func (r *Record) Deleted() bool {
	return r != nil && r.DeletedAt != nil
}

// Status returns the order status carried by the record, or empty for
// non-order records.
func (r *Record) Status() OrderStatus {
	if r == nil {
		return ""
	}
	if fields, ok := r.Fields.(*OrderFields); ok {
		return fields.Status
	}
	return ""
}

// DecodeFields unmarshals a stored field bag into the typed schema for
// the given kind.
func DecodeFields(kind EntityKind, data []byte) (FieldSet, error) {
	switch kind {
	case KindProduct:
		var fields ProductFields
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		return &fields, nil
	case KindOrder:
		var fields OrderFields
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		return &fields, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}
