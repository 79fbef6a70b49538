// Package schedule drives the caregiver's day view: one selected calendar
// day, the appointments fetched for it, per-status counts, and the visit
// status transitions started from that view.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"vrecorder/internal/model"
)

var (
	// ErrNotFound is returned for an id that is not in the loaded day
	ErrNotFound = errors.New("appointment not found")
	// ErrInvalidTransition is returned when the status change is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotConfirmed is returned when the user declines a confirmation
	ErrNotConfirmed = errors.New("action not confirmed")
)

// Backend is the subset of the API client the navigator needs
type Backend interface {
	ListAppointments(ctx context.Context, from, to string) ([]model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status model.Status) (*model.Appointment, error)
}

// ConfirmFunc asks the user to confirm prompt
type ConfirmFunc func(prompt string) bool

// View is a consistent snapshot of the navigator
type View struct {
	Date         string              `json:"date"`
	Appointments []model.Appointment `json:"appointments"`
	Counts       Counts              `json:"counts"`
	Loading      bool                `json:"loading"`
}

// Navigator holds the selected day and its appointments. It is safe for
// concurrent use; a fetch that finishes after the selection has moved on
// is discarded.
type Navigator struct {
	mu           sync.Mutex
	backend      Backend
	logger       *slog.Logger
	selected     time.Time
	appointments []model.Appointment
	loading      bool
	gen          uint64
}

// NewNavigator creates a navigator positioned on start's calendar day
func NewNavigator(backend Backend, start time.Time, logger *slog.Logger) *Navigator {
	return &Navigator{
		backend:      backend,
		logger:       logger,
		selected:     Day(start),
		appointments: []model.Appointment{},
	}
}

// Selected returns the selected day (noon, local to the start time's zone)
func (n *Navigator) Selected() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selected
}

// DateKey returns the key of the selected day
func (n *Navigator) DateKey() string {
	return DateKey(n.Selected())
}

// Appointments returns a copy of the loaded list
func (n *Navigator) Appointments() []model.Appointment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.appointments)
}

// Counts returns the per-status tally of the loaded list
func (n *Navigator) Counts() Counts {
	n.mu.Lock()
	defer n.mu.Unlock()
	return CountByStatus(n.appointments)
}

// Snapshot returns date, list and counts taken under one lock
func (n *Navigator) Snapshot() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return View{
		Date:         DateKey(n.selected),
		Appointments: slices.Clone(n.appointments),
		Counts:       CountByStatus(n.appointments),
		Loading:      n.loading,
	}
}

// Load refetches the selected day. The current list stays visible until
// the new one arrives.
func (n *Navigator) Load(ctx context.Context) error {
	n.mu.Lock()
	day := n.selected
	gen := n.begin()
	n.mu.Unlock()

	return n.fetch(ctx, day, gen)
}

// SelectDate jumps to t's calendar day and fetches it
func (n *Navigator) SelectDate(ctx context.Context, t time.Time) error {
	n.mu.Lock()
	n.appointments = []model.Appointment{}
	n.selected = Day(t)
	day := n.selected
	gen := n.begin()
	n.mu.Unlock()

	return n.fetch(ctx, day, gen)
}

// Navigate moves one day in dir. The old list is cleared first so it is
// never shown under the new date, and the fetch is issued for the new day
// directly rather than re-reading the selection afterwards.
func (n *Navigator) Navigate(ctx context.Context, dir Direction) error {
	n.mu.Lock()
	n.appointments = []model.Appointment{}
	n.selected = Shift(n.selected, dir)
	day := n.selected
	gen := n.begin()
	n.mu.Unlock()

	return n.fetch(ctx, day, gen)
}

// begin must be called with mu held
func (n *Navigator) begin() uint64 {
	n.gen++
	n.loading = true
	return n.gen
}

func (n *Navigator) fetch(ctx context.Context, day time.Time, gen uint64) error {
	key := DateKey(day)
	list, err := n.backend.ListAppointments(ctx, key, key)

	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.gen {
		n.logger.Debug("Dropping superseded schedule response", "date", key)
		return nil
	}
	n.loading = false
	if err != nil {
		return fmt.Errorf("failed to load appointments for %s: %w", key, err)
	}
	if list == nil {
		list = []model.Appointment{}
	}
	n.appointments = list
	return nil
}

// StartService moves a scheduled visit to in-progress. The caller then
// opens the recording screen for the returned appointment.
func (n *Navigator) StartService(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := n.find(id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusScheduled {
		return nil, fmt.Errorf("%w: cannot start a %s visit", ErrInvalidTransition, a.Status)
	}
	return n.transition(ctx, a, model.StatusConfirmed)
}

// CompleteService finishes an in-progress visit once confirm agrees.
// Completion cannot be undone.
func (n *Navigator) CompleteService(ctx context.Context, id string, confirm ConfirmFunc) (*model.Appointment, error) {
	a, err := n.find(id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot complete a %s visit", ErrInvalidTransition, a.Status)
	}
	prompt := fmt.Sprintf("Complete the visit for %s? This cannot be undone.", a.label())
	if confirm == nil || !confirm(prompt) {
		return nil, ErrNotConfirmed
	}
	return n.transition(ctx, a, model.StatusCompleted)
}

// CancelAppointment cancels any visit that is not completed or cancelled,
// once confirm agrees
func (n *Navigator) CancelAppointment(ctx context.Context, id string, confirm ConfirmFunc) (*model.Appointment, error) {
	a, err := n.find(id)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, fmt.Errorf("%w: visit is already %s", ErrInvalidTransition, a.Status)
	}
	prompt := fmt.Sprintf("Cancel the visit for %s?", a.label())
	if confirm == nil || !confirm(prompt) {
		return nil, ErrNotConfirmed
	}
	return n.transition(ctx, a, model.StatusCancelled)
}

func (n *Navigator) find(id string) (appointment, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, a := range n.appointments {
		if a.ID == id {
			return appointment(a), nil
		}
	}
	return appointment{}, ErrNotFound
}

func (n *Navigator) transition(ctx context.Context, a appointment, to model.Status) (*model.Appointment, error) {
	updated, err := n.backend.UpdateAppointmentStatus(ctx, a.ID, to)
	if err != nil {
		return nil, err
	}
	if updated == nil || updated.ID == "" {
		// backend acknowledged without echoing the record
		patched := model.Appointment(a)
		patched.Status = to
		updated = &patched
	}

	n.mu.Lock()
	for i := range n.appointments {
		if n.appointments[i].ID == updated.ID {
			n.appointments[i] = *updated
		}
	}
	n.mu.Unlock()

	n.logger.Info("Appointment status changed",
		"appointment_id", a.ID,
		"from", a.Status,
		"to", updated.Status,
	)
	return updated, nil
}

type appointment model.Appointment

func (a appointment) label() string {
	if a.PatientName != "" {
		return a.PatientName
	}
	return "appointment " + a.ID
}
