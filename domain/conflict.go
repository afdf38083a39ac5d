package domain

import "fmt"

// ConflictReport is returned to a caller whose compare-and-swap lost.
// It carries both sides of the disagreement so the caller can resolve
// without a separate re-fetch: adopt CurrentValues, or resubmit its own
// values against CurrentVersion. It is transient and never persisted.
type ConflictReport struct {
	EntityKind      EntityKind `json:"entity_kind"`
	EntityID        string     `json:"entity_id"`
	CurrentVersion  int        `json:"current_version"`
	ExpectedVersion int        `json:"expected_version"`
	CurrentValues   FieldSet   `json:"current_values"`
	SubmittedValues FieldSet   `json:"submitted_values"`
}

// ChangedFields lists the fields on which the two sides actually differ.
func (r ConflictReport) ChangedFields() []string {
	if r.CurrentValues == nil || r.SubmittedValues == nil {
		return nil
	}
	return r.CurrentValues.Diff(r.SubmittedValues)
}

// ConflictError wraps a ConflictReport as an error for arbitration results.
type ConflictError struct {
	Report ConflictReport
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: version conflict (current %d, expected %d)",
		e.Report.EntityKind, e.Report.EntityID, e.Report.CurrentVersion, e.Report.ExpectedVersion)
}

func (e *ConflictError) Code() ErrorCode {
	return ErrCodeConflict
}
