package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
)

const (
	TypeBookingCreated     = "booking.created.v1"
	TypeBookingRescheduled = "booking.rescheduled.v1"
	TypeBookingCancelled   = "booking.cancelled.v1"
	TypeCompanyRegistered  = "company.registered.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type BookingPayload struct {
	BookingID          string    `json:"booking_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	CompanyID          string    `json:"company_id"`
	ServiceID          string    `json:"service_id"`
	CustomerEmail      string    `json:"customer_email"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Status             string    `json:"status"`
	BookedVia          string    `json:"booked_via,omitempty"`
	AgentName          string    `json:"agent_name,omitempty"`
}

func BookingEvent(eventType string, b model.Booking) (Event, error) {
	payload, err := json.Marshal(BookingPayload{
		BookingID:          b.ID,
		ConfirmationNumber: b.ConfirmationNumber(),
		CompanyID:          b.CompanyID,
		ServiceID:          b.ServiceID,
		CustomerEmail:      b.CustomerEmail,
		StartTime:          b.StartTime.UTC(),
		EndTime:            b.EndTime.UTC(),
		Status:             string(b.Status),
		BookedVia:          b.BookedVia,
		AgentName:          b.AgentName,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{AggregateType: "booking", AggregateID: b.ID, EventType: eventType, Payload: payload}, nil
}

type CompanyPayload struct {
	CompanyID string `json:"company_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	ServiceID string `json:"service_id"`
	Industry  string `json:"industry,omitempty"`
}

func CompanyRegisteredEvent(c model.Company, firstService model.Service) (Event, error) {
	payload, err := json.Marshal(CompanyPayload{
		CompanyID: c.ID,
		Slug:      c.Slug,
		Name:      c.Name,
		ServiceID: firstService.ID,
		Industry:  c.Industry,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{AggregateType: "company", AggregateID: c.ID, EventType: TypeCompanyRegistered, Payload: payload}, nil
}
