package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
	"go.opentelemetry.io/otel/attribute"
)

type Customer struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
}

type ReserveRequest struct {
	CompanySlug string   `json:"companySlug" validate:"required"`
	ServiceID   string   `json:"serviceId" validate:"required,uuid"`
	Slot        string   `json:"slot" validate:"required,rfc3339"`
	Customer    Customer `json:"customer"`
	Notes       string   `json:"notes" validate:"omitempty,max=2000"`
	AgentName   string   `json:"agentName" validate:"omitempty,max=200"`
}

type Patient struct {
	Name               string `json:"name" validate:"required,min=1,max=200"`
	Email              string `json:"email" validate:"required,email,max=254"`
	Phone              string `json:"phone" validate:"omitempty,max=50"`
	DateOfBirth        string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	InsuranceProvider  string `json:"insuranceProvider" validate:"omitempty,max=200"`
	ReasonForVisit     string `json:"reasonForVisit" validate:"omitempty,max=2000"`
	Allergies          string `json:"allergies" validate:"omitempty,max=2000"`
	CurrentMedications string `json:"currentMedications" validate:"omitempty,max=2000"`
}

type MedicalReserveRequest struct {
	CompanySlug string  `json:"companySlug" validate:"required"`
	ServiceID   string  `json:"serviceId" validate:"required,uuid"`
	Slot        string  `json:"slot" validate:"required,rfc3339"`
	Patient     Patient `json:"patient"`
	Notes       string  `json:"notes" validate:"omitempty,max=2000"`
	AgentName   string  `json:"agentName" validate:"omitempty,max=200"`
}

type Reservation struct {
	Booking model.Booking
	Company model.Company
	Service model.Service
}

// Reserve books a slot for a customer.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return Reservation{}, err
	}
	return s.reserve(ctx, req.CompanySlug, req.ServiceID, req.Slot, model.Booking{
		CustomerName:  strings.TrimSpace(req.Customer.Name),
		CustomerEmail: strings.TrimSpace(req.Customer.Email),
		CustomerPhone: strings.TrimSpace(req.Customer.Phone),
		Notes:         req.Notes,
		AgentName:     strings.TrimSpace(req.AgentName),
	}, false)
}

// ReserveMedical books a slot at a medical practice, storing the patient intake fields.
// Companies with a non-medical industry are rejected.
func (s *Service) ReserveMedical(ctx context.Context, req MedicalReserveRequest) (Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return Reservation{}, err
	}
	p := req.Patient
	return s.reserve(ctx, req.CompanySlug, req.ServiceID, req.Slot, model.Booking{
		CustomerName:  strings.TrimSpace(p.Name),
		CustomerEmail: strings.TrimSpace(p.Email),
		CustomerPhone: strings.TrimSpace(p.Phone),
		Notes:         req.Notes,
		AgentName:     strings.TrimSpace(req.AgentName),
		Patient: model.PatientInfo{
			DateOfBirth:        p.DateOfBirth,
			InsuranceProvider:  strings.TrimSpace(p.InsuranceProvider),
			ReasonForVisit:     p.ReasonForVisit,
			Allergies:          p.Allergies,
			CurrentMedications: p.CurrentMedications,
		},
	}, true)
}

func (s *Service) reserve(ctx context.Context, slug, serviceID, rawSlot string, b model.Booking, medical bool) (res Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "reservations.reserve")
	defer func() { endSpan(span, err) }()

	start, err := validation.ParseSlot("slot", rawSlot)
	if err != nil {
		return Reservation{}, err
	}

	company, svc, err := s.resolve(ctx, strings.TrimSpace(slug), strings.TrimSpace(serviceID))
	if err != nil {
		return Reservation{}, err
	}
	if medical && company.Industry != "" && !company.IsMedical() {
		return Reservation{}, ErrNotMedical
	}
	span.SetAttributes(
		attribute.String("company_id", company.ID),
		attribute.String("service_id", svc.ID),
		attribute.Bool("medical", medical),
	)

	start = start.Truncate(time.Second)
	if err := s.checkSlot("slot", start, svc.Duration(), company.Location()); err != nil {
		return Reservation{}, err
	}

	b.CompanyID = company.ID
	b.ServiceID = svc.ID
	b.StartTime = start.UTC()
	b.EndTime = start.Add(svc.Duration()).UTC()
	b.Status = model.StatusConfirmed
	b.BookedVia = model.BookedViaAIAgent
	if b.AgentName == "" {
		b.AgentName = model.DefaultAgentName
	}

	if err := s.store.CreateBooking(ctx, &b); err != nil {
		if errors.Is(err, storage.ErrOverlap) {
			return Reservation{}, ErrSlotUnavailable
		}
		return Reservation{}, err
	}
	span.SetAttributes(attribute.String("booking_id", b.ID))
	return Reservation{Booking: b, Company: company, Service: svc}, nil
}
