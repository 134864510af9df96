package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	otelx "github.com/md-rashed-zaman/agentbook/libs/otel"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotUnavailable = errors.New("time slot no longer available")
	ErrBookingClosed   = errors.New("booking is no longer active")
	ErrNotMedical      = errors.New("company is not a medical practice")
)

const availabilityHint = "Use /ai/availability?company={slug}&serviceId={serviceId} to find open slots"

// Store is the persistence the reservation flows need. *storage.Repository implements it.
type Store interface {
	CompanyBySlug(ctx context.Context, slug string) (model.Company, error)
	CompanyByID(ctx context.Context, id string) (model.Company, error)
	ServiceForCompany(ctx context.Context, companyID, serviceID string) (model.Service, error)
	ServiceByID(ctx context.Context, companyID, serviceID string) (model.Service, error)
	ListBookedIntervals(ctx context.Context, companyID, serviceID string, window availability.Interval) ([]availability.Interval, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	BookingForCustomer(ctx context.Context, id, email string) (model.BookingDetail, error)
	RescheduleBooking(ctx context.Context, b *model.Booking) error
	CancelBooking(ctx context.Context, id, email string) (model.Booking, error)
}

type Config struct {
	Hours       availability.Hours
	DefaultDays int
	MaxDays     int
	MaxSlots    int
}

func DefaultConfig() Config {
	return Config{
		Hours:       availability.Hours{Open: 9, Close: 17},
		DefaultDays: 7,
		MaxDays:     366,
		MaxSlots:    50,
	}
}

type Service struct {
	store     Store
	cfg       Config
	now       func() time.Time
	validator *validation.Validator
	tracer    trace.Tracer
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if !cfg.Hours.Valid() {
		cfg.Hours = def.Hours
	}
	if cfg.DefaultDays < 0 {
		cfg.DefaultDays = def.DefaultDays
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = def.MaxDays
	}
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = def.MaxSlots
	}
	s := &Service{
		store:     store,
		cfg:       cfg,
		now:       time.Now,
		validator: validation.NewValidator(),
		tracer:    otelx.Tracer("booking-service/reservations"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) resolve(ctx context.Context, slug, serviceID string) (model.Company, model.Service, error) {
	company, err := s.store.CompanyBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Company{}, model.Service{}, ErrCompanyNotFound
		}
		return model.Company{}, model.Service{}, err
	}
	svc, err := s.store.ServiceForCompany(ctx, company.ID, serviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Company{}, model.Service{}, ErrServiceNotFound
		}
		return model.Company{}, model.Service{}, err
	}
	return company, svc, nil
}

// checkSlot rejects a start that is not in the future or does not fit in business hours.
func (s *Service) checkSlot(field string, start time.Time, duration time.Duration, loc *time.Location) error {
	if !start.After(s.now()) {
		return validation.New("Invalid request", availabilityHint, validation.FieldError{Field: field, Message: "must be in the future"})
	}
	if !availability.WithinHours(start, duration, s.cfg.Hours, loc) {
		return validation.New("Invalid request", availabilityHint, validation.FieldError{
			Field:   field,
			Message: "must start and end within business hours",
		})
	}
	return nil
}

func validUUID(raw string) bool {
	_, err := uuid.Parse(strings.TrimSpace(raw))
	return err == nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func bookingAttrs(companyID, serviceID string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("company_id", companyID),
		attribute.String("service_id", serviceID),
	)
}
