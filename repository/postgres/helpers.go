package postgres

import (
	"encoding/json"

	"github.com/sellerhub/backend/domain"
)

func encodeFields(fields domain.FieldSet) ([]byte, error) {
	if fields == nil {
		return nil, domain.ErrInvalidPayload
	}
	return json.Marshal(fields)
}
