package entities

import (
	"encoding/json"
	"fmt"
)

const (
	notFoundKey     = "notFound"
	notFoundMessage = "message"
)

// PatientRecord is the opaque key/value document stored for a patient.
type PatientRecord map[string]interface{}

// NewNotFoundRecord builds the placeholder returned when no record exists for patientID.
func NewNotFoundRecord(patientID string) PatientRecord {
	return PatientRecord{
		notFoundKey:     true,
		notFoundMessage: fmt.Sprintf("No patient found with ID %s", patientID),
	}
}

// IsNotFound reports whether r is the not-found placeholder.
func (r PatientRecord) IsNotFound() bool {
	v, ok := r[notFoundKey].(bool)
	return ok && v
}

// HasData reports whether r carries usable patient data.
func (r PatientRecord) HasData() bool {
	return len(r) > 0 && !r.IsNotFound()
}

// JSON renders the record for inclusion in a prompt.
func (r PatientRecord) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(data)
}
