package hierarchy

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SuperiorRef is an optional reference to the record a record reports to.
// The zero value means the record has no superior.
type SuperiorRef struct {
	id  int
	set bool
}

// NoSuperior returns a reference for a rootless record.
func NoSuperior() SuperiorRef {
	return SuperiorRef{}
}

// ReportsTo returns a reference to the record with the given id.
func ReportsTo(id int) SuperiorRef {
	return SuperiorRef{id: id, set: true}
}

// Get returns the referenced id and whether the reference is present.
func (r SuperiorRef) Get() (int, bool) {
	return r.id, r.set
}

// IsNone returns true if the reference is absent.
func (r SuperiorRef) IsNone() bool {
	return !r.set
}

// String returns the referenced id, or "none" when absent.
func (r SuperiorRef) String() string {
	if !r.set {
		return "none"
	}
	return strconv.Itoa(r.id)
}

// MarshalJSON encodes an absent reference as null.
func (r SuperiorRef) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// UnmarshalJSON decodes null or an integer id.
func (r *SuperiorRef) UnmarshalJSON(data []byte) error {
	var id *int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("superior reference: %w", err)
	}
	if id == nil {
		*r = NoSuperior()
		return nil
	}
	*r = ReportsTo(*id)
	return nil
}

// Record is a single member of the workforce hierarchy.
type Record struct {
	// ID uniquely identifies the record.
	ID int `json:"id"`

	// DisplayName is the human-readable name of the record's subject.
	DisplayName string `json:"display_name"`

	// Compensation is a non-negative amount.
	Compensation float64 `json:"compensation"`

	// Superior is the record this record reports to, if any.
	Superior SuperiorRef `json:"superior_id"`
}

// NewRecord creates a Record from its parts.
func NewRecord(id int, name string, compensation float64, superior SuperiorRef) Record {
	return Record{
		ID:           id,
		DisplayName:  name,
		Compensation: compensation,
		Superior:     superior,
	}
}

// IsRoot returns true if the record has no superior reference.
func (r Record) IsRoot() bool {
	return r.Superior.IsNone()
}

// Validate checks the record's required fields.
func (r Record) Validate() error {
	if strings.TrimSpace(r.DisplayName) == "" {
		return fmt.Errorf("record %d: display name is required", r.ID)
	}
	if math.IsNaN(r.Compensation) || math.IsInf(r.Compensation, 0) {
		return fmt.Errorf("record %d: compensation must be a finite number", r.ID)
	}
	if r.Compensation < 0 {
		return fmt.Errorf("record %d: compensation cannot be negative, got %f", r.ID, r.Compensation)
	}
	return nil
}
