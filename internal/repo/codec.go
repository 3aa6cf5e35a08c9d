package repo

import (
	"encoding/json"
	"fmt"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// The JSON encoding of plans and item snapshots is shared by every Gateway
// implementation so a database can be migrated between dialects row by row.

// EncodePlanDocument marshals the JSON-stored parts of a plan.
// A nil Days slice is stored as an empty array, never as JSON null.
func EncodePlanDocument(plan domain.Plan) (input, days []byte, err error) {
	input, err = json.Marshal(plan.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("encode input: %w", err)
	}
	d := plan.Days
	if d == nil {
		d = []domain.Day{}
	}
	days, err = json.Marshal(d)
	if err != nil {
		return nil, nil, fmt.Errorf("encode days: %w", err)
	}
	return input, days, nil
}

// DecodePlanDocument unmarshals the JSON-stored parts of a plan into p.
func DecodePlanDocument(input, days []byte, p *domain.Plan) error {
	if err := json.Unmarshal(input, &p.Input); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	if err := json.Unmarshal(days, &p.Days); err != nil {
		return fmt.Errorf("decode days: %w", err)
	}
	return nil
}

// EncodeItemSnapshot marshals a history before/after snapshot.
// A nil item encodes to nil, which the drivers write as SQL NULL.
func EncodeItemSnapshot(item *domain.TimelineItem) ([]byte, error) {
	if item == nil {
		return nil, nil
	}
	b, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeItemSnapshot is the inverse of EncodeItemSnapshot: empty input
// (SQL NULL) decodes to a nil item.
func DecodeItemSnapshot(b []byte) (*domain.TimelineItem, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var item domain.TimelineItem
	if err := json.Unmarshal(b, &item); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &item, nil
}
