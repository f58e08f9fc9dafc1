package model

import "time"

// PrescriptionStatus is the lifecycle state of a prescription.  Pending is
// the only non-terminal state.
type PrescriptionStatus string

const (
	StatusPending      PrescriptionStatus = "pending"
	StatusAffordable   PrescriptionStatus = "affordable"
	StatusUnaffordable PrescriptionStatus = "unaffordable"
)

// Terminal reports whether no further transition is allowed from s.
func (s PrescriptionStatus) Terminal() bool {
	return s == StatusAffordable || s == StatusUnaffordable
}

// Prescription records a doctor's prescription for a patient and the
// patient's affordability answer.
//
// Fields:
//
//	ID        – primary key assigned at creation.
//	Doctor    – username of the issuing doctor.
//	Patient   – username of the receiving patient.
//	Text      – free-form prescription text.
//	Status    – pending, affordable or unaffordable.
//	CreatedAt – creation timestamp.
//	UpdatedAt – timestamp of the last status change.
type Prescription struct {
	ID        uint64             `json:"id"`         // prescriptions.id
	Doctor    string             `json:"doctor"`     // prescriptions.doctor
	Patient   string             `json:"patient"`    // prescriptions.patient
	Text      string             `json:"text"`       // prescriptions.body
	Status    PrescriptionStatus `json:"status"`     // prescriptions.status
	CreatedAt time.Time          `json:"created_at"` // prescriptions.created_at
	UpdatedAt time.Time          `json:"updated_at"` // prescriptions.updated_at
}
