package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// ChangeKind classifies ledger events.
type ChangeKind string

const (
	ChangeCreate       ChangeKind = "create"
	ChangeUpdate       ChangeKind = "update"
	ChangeDelete       ChangeKind = "delete"
	ChangeStatusChange ChangeKind = "status_change"
)

// Cursor is an opaque position in the change ledger. It is assigned by
// the ledger's monotonic sequence counter and only ever advances; the
// wall-clock timestamp on events is for display, never for ordering.
type Cursor uint64

func (c Cursor) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

func (c Cursor) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cursor) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCursor(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCursor decodes the wire form of a cursor.
func ParseCursor(raw string) (Cursor, error) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, NewError(ErrCodeInvalid, "malformed cursor")
	}
	return Cursor(value), nil
}

// ChangeEvent is one immutable entry of the change ledger. Seq is the
// single total-ordering key across all entity kinds.
type ChangeEvent struct {
	Seq        Cursor      `json:"seq"`
	EntityKind EntityKind  `json:"entity_kind"`
	EntityID   string      `json:"entity_id"`
	Version    int         `json:"version"`
	Kind       ChangeKind  `json:"kind"`
	Timestamp  time.Time   `json:"timestamp"`
	Actor      string      `json:"actor,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Status     OrderStatus `json:"status,omitempty"`
}

// NewChangeEvent builds the ledger entry for a successful mutation.
// The ledger assigns Seq on append.
func NewChangeEvent(kind ChangeKind, record *Record, actor string) *ChangeEvent {
	event := &ChangeEvent{
		EntityKind: record.Kind,
		EntityID:   record.ID,
		Version:    record.Version,
		Kind:       kind,
		Timestamp:  time.Now().UTC(),
		Actor:      actor,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.Kind == KindOrder {
		event.Status = record.Status()
	}
	return event
}

// DeltaBatch is the payload served to polling clients: everything that
// happened after their cursor, grouped by entity kind, plus the new
// cursor to hold. Cursor is returned even when the groups are empty so
// pollers always advance.
type DeltaBatch struct {
	Changes DeltaChanges `json:"changes"`
	Cursor  Cursor       `json:"timestamp"`
}

type DeltaChanges struct {
	Products []ProductChange `json:"products"`
	Orders   []OrderChange   `json:"orders"`
	Audit    []ChangeEvent   `json:"audit"`
}

func (c DeltaChanges) Empty() bool {
	return len(c.Products) == 0 && len(c.Orders) == 0 && len(c.Audit) == 0
}

type ProductChange struct {
	ProductID string    `json:"product_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderChange struct {
	OrderID   string      `json:"order_id"`
	UpdatedAt time.Time   `json:"updated_at"`
	Status    OrderStatus `json:"status"`
}
