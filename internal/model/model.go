// Package model holds the care backend's records shared by the client packages
package model

import "time"

// Status is an appointment's lifecycle state
type Status string

const (
	StatusScheduled Status = "scheduled"
	// StatusConfirmed means the visit is in progress
	StatusConfirmed   Status = "confirmed"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

// Statuses lists every status in display order
var Statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusRescheduled,
}

// Terminal reports whether no further transition is allowed
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID            string `json:"id"`
	PatientID     string `json:"patient_id,omitempty"`
	PatientName   string `json:"patient_name,omitempty"`
	FamilyID      string `json:"family_id,omitempty"`
	ServiceTypeID string `json:"service_type_id,omitempty"`
	ServiceType   string `json:"service_type,omitempty"`
	ScheduledDate string `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string `json:"scheduled_time"` // HH:MM
	Duration      int    `json:"duration"`       // minutes
	Status        Status `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

// ServiceRecord is the note taken during a visit, optionally with audio
type ServiceRecord struct {
	ID            string    `json:"id,omitempty"`
	AppointmentID string    `json:"appointment_id"`
	Content       string    `json:"content"`
	RecordingKey  string    `json:"recording_key,omitempty"`
	RecordingType string    `json:"recording_type,omitempty"`
	RecordingSize int64     `json:"recording_size,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}
