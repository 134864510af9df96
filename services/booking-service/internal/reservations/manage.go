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
	"go.opentelemetry.io/otel/trace"
)

func checkOwner(id, email string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(email) == "" {
		return validation.New("Missing booking ID or email", "Use ?id=booking-id&email=customer-email")
	}
	if !validUUID(id) {
		return validation.Field("id", "must be a valid UUID")
	}
	return nil
}

// Lookup returns a booking when email matches its customer.
func (s *Service) Lookup(ctx context.Context, id, email string) (model.BookingDetail, error) {
	if err := checkOwner(id, email); err != nil {
		return model.BookingDetail{}, err
	}
	d, err := s.store.BookingForCustomer(ctx, strings.TrimSpace(id), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.BookingDetail{}, ErrBookingNotFound
		}
		return model.BookingDetail{}, err
	}
	return d, nil
}

type RescheduleRequest struct {
	BookingID    string  `json:"bookingId" validate:"required,uuid"`
	Email        string  `json:"email" validate:"required,email"`
	NewSlot      string  `json:"newSlot" validate:"omitempty,rfc3339"`
	NewServiceID string  `json:"newServiceId" validate:"omitempty,uuid"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

// Reschedule moves a booking to a new slot and/or service and updates its notes. The new
// interval goes through the same checks as a new reservation, ignoring the booking itself.
func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) (detail model.BookingDetail, err error) {
	if err := s.validator.Struct(req); err != nil {
		return model.BookingDetail{}, err
	}
	if req.NewSlot == "" && req.NewServiceID == "" && req.Notes == nil {
		return model.BookingDetail{}, validation.New("Nothing to update", "Provide at least one of newSlot, newServiceId or notes")
	}

	current, err := s.Lookup(ctx, req.BookingID, req.Email)
	if err != nil {
		return model.BookingDetail{}, err
	}
	if !current.Status.Blocking() {
		return model.BookingDetail{}, ErrBookingClosed
	}

	ctx, span := s.tracer.Start(ctx, "reservations.reschedule", bookingAttrs(current.CompanyID, current.ServiceID),
		trace.WithAttributes(attribute.String("booking_id", current.ID)))
	defer func() { endSpan(span, err) }()

	company, err := s.store.CompanyByID(ctx, current.CompanyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.BookingDetail{}, ErrCompanyNotFound
		}
		return model.BookingDetail{}, err
	}

	// The booking's own service may have been deactivated since; it still serves notes edits.
	var svc model.Service
	if req.NewServiceID != "" {
		svc, err = s.store.ServiceForCompany(ctx, company.ID, strings.TrimSpace(req.NewServiceID))
	} else {
		svc, err = s.store.ServiceByID(ctx, company.ID, current.ServiceID)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.BookingDetail{}, ErrServiceNotFound
		}
		return model.BookingDetail{}, err
	}

	start := current.StartTime
	if req.NewSlot != "" {
		if start, err = validation.ParseSlot("newSlot", req.NewSlot); err != nil {
			return model.BookingDetail{}, err
		}
		start = start.Truncate(time.Second)
	}
	moved := !start.Equal(current.StartTime) || svc.ID != current.ServiceID
	if moved && !svc.IsActive {
		return model.BookingDetail{}, ErrServiceNotFound
	}
	if moved {
		if err := s.checkSlot("newSlot", start, svc.Duration(), company.Location()); err != nil {
			return model.BookingDetail{}, err
		}
	}

	b := current.Booking
	b.ServiceID = svc.ID
	b.StartTime = start.UTC()
	b.EndTime = start.Add(svc.Duration()).UTC()
	if req.Notes != nil {
		b.Notes = *req.Notes
	}

	if err := s.store.RescheduleBooking(ctx, &b); err != nil {
		switch {
		case errors.Is(err, storage.ErrOverlap):
			return model.BookingDetail{}, ErrSlotUnavailable
		case errors.Is(err, storage.ErrNotFound):
			return model.BookingDetail{}, ErrBookingClosed
		}
		return model.BookingDetail{}, err
	}

	current.Booking = b
	current.ServiceName = svc.Name
	current.ServiceDuration = svc.DurationMinutes
	return current, nil
}

// Cancel marks a pending or confirmed booking cancelled. Cancelled bookings stop blocking
// their interval.
func (s *Service) Cancel(ctx context.Context, id, email string) (b model.Booking, err error) {
	if err := checkOwner(id, email); err != nil {
		return model.Booking{}, err
	}
	ctx, span := s.tracer.Start(ctx, "reservations.cancel", trace.WithAttributes(attribute.String("booking_id", id)))
	defer func() { endSpan(span, err) }()

	b, err = s.store.CancelBooking(ctx, strings.TrimSpace(id), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, err
	}
	return b, nil
}
