package reservations

import (
	"context"
	"strings"
	"time"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
)

const availabilityParamsHint = "Use ?company=company-slug&serviceId=service-id&date=YYYY-MM-DD (optional)&days=7 (optional)"

type AvailabilityQuery struct {
	CompanySlug string
	ServiceID   string
	// Date is a YYYY-MM-DD calendar day in the company's time zone; empty means today.
	Date string
	// Days is how many days after Date to include; nil means the configured default.
	Days *int
}

type AvailabilityResult struct {
	ServiceID  string
	Duration   int
	Timezone   string
	Slots      []time.Time
	TotalSlots int
	From       string
	To         string
}

// Availability lists free slot starts for a service over [Date, Date+Days], truncated to
// the configured maximum. Days beyond the configured range are clamped to it.
func (s *Service) Availability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	q.CompanySlug = strings.TrimSpace(q.CompanySlug)
	q.ServiceID = strings.TrimSpace(q.ServiceID)
	if q.CompanySlug == "" || q.ServiceID == "" {
		return AvailabilityResult{}, validation.New("Missing required parameters", availabilityParamsHint)
	}
	if !validUUID(q.ServiceID) {
		return AvailabilityResult{}, validation.Field("serviceId", "must be a valid UUID")
	}
	days := s.cfg.DefaultDays
	if q.Days != nil {
		days = *q.Days
	}
	if days < 0 {
		return AvailabilityResult{}, validation.Field("days", "must be 0 or more")
	}
	// Longer ranges are clamped; the slot cap already bounds the response.
	days = min(days, s.cfg.MaxDays)

	company, svc, err := s.resolve(ctx, q.CompanySlug, q.ServiceID)
	if err != nil {
		return AvailabilityResult{}, err
	}
	loc := company.Location()

	now := s.now()
	from := now.In(loc)
	if q.Date != "" {
		from, err = time.ParseInLocation(time.DateOnly, q.Date, loc)
		if err != nil {
			return AvailabilityResult{}, validation.Field("date", "must be a date in YYYY-MM-DD format")
		}
	}

	window := availability.Window(from, days, s.cfg.Hours, loc)
	busy, err := s.store.ListBookedIntervals(ctx, company.ID, svc.ID, window)
	if err != nil {
		return AvailabilityResult{}, err
	}

	slots := availability.AvailableSlots(availability.Request{
		From:     from,
		Days:     days,
		Hours:    s.cfg.Hours,
		Duration: svc.Duration(),
		Location: loc,
		Busy:     busy,
		Now:      now,
	})

	res := AvailabilityResult{
		ServiceID:  svc.ID,
		Duration:   svc.DurationMinutes,
		Timezone:   loc.String(),
		TotalSlots: len(slots),
		From:       from.Format(time.DateOnly),
		To:         from.AddDate(0, 0, days).Format(time.DateOnly),
	}
	if len(slots) > s.cfg.MaxSlots {
		slots = slots[:s.cfg.MaxSlots]
	}
	res.Slots = slots
	return res, nil
}
