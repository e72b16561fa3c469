package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDrop is returned when a drag payload does not name a visit.
var ErrInvalidDrop = errors.New("invalid drop payload")

// DropTarget identifies the visit dragged onto the delete zone.
type DropTarget struct {
	DoctorID string `json:"docId"`
	VisitID  string `json:"visitId"`
}

// DecodeDropTarget decodes a drag payload. Both ids are required.
func DecodeDropTarget(data []byte) (DropTarget, error) {
	var t DropTarget
	if err := json.Unmarshal(data, &t); err != nil {
		return DropTarget{}, fmt.Errorf("%w: %v", ErrInvalidDrop, err)
	}
	if t.DoctorID == "" || t.VisitID == "" {
		return DropTarget{}, fmt.Errorf("%w: docId and visitId are required", ErrInvalidDrop)
	}
	return t, nil
}
