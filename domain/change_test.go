package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursor(t *testing.T) {
	cursor, err := ParseCursor("42")
	require.NoError(t, err)
	assert.Equal(t, Cursor(42), cursor)

	_, err = ParseCursor("not-a-cursor")
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	_, err = ParseCursor("-1")
	require.Error(t, err)
}

func TestCursorJSONRoundTrip(t *testing.T) {
	payload, err := json.Marshal(Cursor(1754))
	require.NoError(t, err)
	assert.Equal(t, `"1754"`, string(payload))

	var decoded Cursor
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, Cursor(1754), decoded)
}

func TestNewChangeEventStampsOrderStatus(t *testing.T) {
	order := &Record{
		ID:      "o-1",
		Kind:    KindOrder,
		Version: 3,
		Fields:  &OrderFields{CustomerID: "c-1", Status: StatusShipped},
	}
	event := NewChangeEvent(ChangeStatusChange, order, "alice")

	assert.Equal(t, KindOrder, event.EntityKind)
	assert.Equal(t, "o-1", event.EntityID)
	assert.Equal(t, 3, event.Version)
	assert.Equal(t, StatusShipped, event.Status)
	assert.Equal(t, "alice", event.Actor)
	assert.False(t, event.Timestamp.IsZero())
}

func TestNewChangeEventProductHasNoStatus(t *testing.T) {
	product := &Record{
		ID:      "p-1",
		Kind:    KindProduct,
		Version: 1,
		Fields:  &ProductFields{Title: "mug"},
	}
	event := NewChangeEvent(ChangeCreate, product, "bob")

	assert.Equal(t, OrderStatus(""), event.Status)
}

func TestConflictReportChangedFields(t *testing.T) {
	report := ConflictReport{
		CurrentValues:   &ProductFields{Title: "mug", AvailableQty: 5},
		SubmittedValues: &ProductFields{Title: "mug", AvailableQty: 7, PhotosQty: 1},
	}
	assert.ElementsMatch(t, []string{"available_qty", "photos_qty"}, report.ChangedFields())
}
