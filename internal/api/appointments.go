package api

import (
	"context"
	"net/http"
	"net/url"

	"vrecorder/internal/model"
)

type appointmentList struct {
	Appointments []model.Appointment `json:"appointments"`
}

type statusUpdate struct {
	Status model.Status `json:"status"`
}

// ListAppointments returns the appointments scheduled between the two
// YYYY-MM-DD keys, inclusive
func (c *Client) ListAppointments(ctx context.Context, from, to string) ([]model.Appointment, error) {
	q := url.Values{}
	q.Set("start_date", from)
	q.Set("end_date", to)

	var resp appointmentList
	if err := c.do(ctx, http.MethodGet, "/appointments", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Appointments == nil {
		return []model.Appointment{}, nil
	}
	return resp.Appointments, nil
}

// GetAppointment fetches one appointment
func (c *Client) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments/"+url.PathEscape(id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAppointment books a new visit
func (c *Client) CreateAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	var created model.Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", nil, a, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAppointmentStatus moves an appointment to status
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id string, status model.Status) (*model.Appointment, error) {
	var updated model.Appointment
	err := c.do(ctx, http.MethodPut, "/appointments/"+url.PathEscape(id), nil, statusUpdate{Status: status}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreateServiceRecord stores a visit note
func (c *Client) CreateServiceRecord(ctx context.Context, rec *model.ServiceRecord) (*model.ServiceRecord, error) {
	var created model.ServiceRecord
	if err := c.do(ctx, http.MethodPost, "/service-records", nil, rec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
