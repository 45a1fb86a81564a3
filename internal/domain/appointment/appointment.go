package appointment

import (
	"slices"
	"strings"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
)

// IDPrefix prefixes every appointment identifier ("APT001").
const IDPrefix = "APT"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultDoctor = "Dr. Abebe Kebede"
	DefaultType   = "Check-up"
)

// StatusFilterAll matches every status in a list query.
const StatusFilterAll = "all"

// State transitions:
//
//	Scheduled → In Progress → Completed
//	Scheduled → Cancelled
//	In Progress → Cancelled
//	Cancelled → Scheduled (reschedule only)
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "Scheduled"
	StatusInProgress AppointmentStatus = "In Progress"
	StatusCompleted  AppointmentStatus = "Completed"
	StatusCancelled  AppointmentStatus = "Cancelled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCancelled:  {},
	StatusCompleted:  {},
}

type Appointment struct {
	ID          string            `gorm:"column:id;type:varchar(20);primaryKey" json:"id"`
	PatientName string            `gorm:"column:patient_name;type:varchar(200);not null;index" json:"patientName"`
	DoctorName  string            `gorm:"column:doctor_name;type:varchar(200);not null" json:"doctorName"`
	Date        string            `gorm:"column:date;type:varchar(10);not null" json:"date"`
	Time        string            `gorm:"column:time;type:varchar(5);not null" json:"time"`
	Type        string            `gorm:"column:type;type:varchar(50);not null" json:"type"`
	Status      AppointmentStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Notes       string            `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Position orders the collection; lower values list first.
	Position  int64     `gorm:"column:position;not null;index" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) CanTransitionTo(newStatus AppointmentStatus) bool {
	return slices.Contains(transitions[a.Status], newStatus)
}

// Cancel marks the appointment cancelled. Cancelling twice is a no-op.
func (a *Appointment) Cancel() error {
	if a.Status == StatusCancelled {
		return nil
	}
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCancelled
	return nil
}

// Reschedule moves the appointment. A cancelled appointment is booked again;
// any other status is kept.
func (a *Appointment) Reschedule(date, tm string) {
	a.Date = date
	a.Time = tm
	if a.Status == StatusCancelled {
		a.Status = StatusScheduled
	}
}

// TransitionTo applies a forward status change from the transition table.
func (a *Appointment) TransitionTo(newStatus AppointmentStatus) error {
	if !a.CanTransitionTo(newStatus) {
		return ErrInvalidStatusTransition
	}
	a.Status = newStatus
	return nil
}

// Matches applies the list filter: search on patient name or id, and status
// equal to the filter unless it is the wildcard.
func (a *Appointment) Matches(q *ListAppointmentsQuery) bool {
	if q == nil {
		return true
	}
	if !domain.ContainsFold(a.PatientName, q.Search) && !domain.ContainsFold(a.ID, q.Search) {
		return false
	}
	return q.allStatuses() || string(a.Status) == q.Status
}

type CreateAppointmentCommand struct {
	PatientName string
	DoctorName  string
	Date        string
	Time        string
	Type        string
	Notes       string
}

// Normalize trims the command the way the booking form does.
func (c *CreateAppointmentCommand) Normalize() {
	c.PatientName = strings.TrimSpace(c.PatientName)
	c.DoctorName = strings.TrimSpace(c.DoctorName)
	c.Date = strings.TrimSpace(c.Date)
	c.Time = strings.TrimSpace(c.Time)
	c.Type = strings.TrimSpace(c.Type)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.DoctorName == "" {
		c.DoctorName = DefaultDoctor
	}
	if c.Type == "" {
		c.Type = DefaultType
	}
}

// Validate returns field problems keyed by json field name.
func (c *CreateAppointmentCommand) Validate() map[string]string {
	errs := map[string]string{}
	if c.PatientName == "" {
		errs["patientName"] = "Patient name is required"
	}
	validateSlot(c.Date, c.Time, errs)
	return errs
}

type RescheduleAppointmentCommand struct {
	Date string
	Time string
}

func (c *RescheduleAppointmentCommand) Validate() map[string]string {
	c.Date = strings.TrimSpace(c.Date)
	c.Time = strings.TrimSpace(c.Time)
	errs := map[string]string{}
	validateSlot(c.Date, c.Time, errs)
	return errs
}

func validateSlot(date, tm string, errs map[string]string) {
	if date == "" {
		errs["date"] = "Date is required"
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		errs["date"] = "Date must be formatted YYYY-MM-DD"
	}
	if tm == "" {
		errs["time"] = "Time is required"
	} else if _, err := time.Parse(TimeLayout, tm); err != nil {
		errs["time"] = "Time must be formatted HH:MM"
	}
}

type ListAppointmentsQuery struct {
	Search string
	Status string // a status value, or "all"
}

func (q *ListAppointmentsQuery) allStatuses() bool {
	return q.Status == "" || q.Status == StatusFilterAll
}
