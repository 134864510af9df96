package reservations

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/storage"
)

// memStore mirrors the repository semantics in memory.
type memStore struct {
	mu        sync.Mutex
	companies []model.Company
	services  []model.Service
	bookings  []model.Booking
}

func (m *memStore) CompanyBySlug(_ context.Context, slug string) (model.Company, error) {
	for _, c := range m.companies {
		if c.Slug == slug && c.IsActive {
			return c, nil
		}
	}
	return model.Company{}, storage.ErrNotFound
}

func (m *memStore) CompanyByID(_ context.Context, id string) (model.Company, error) {
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Company{}, storage.ErrNotFound
}

func (m *memStore) ServiceForCompany(_ context.Context, companyID, serviceID string) (model.Service, error) {
	for _, s := range m.services {
		if s.ID == serviceID && s.CompanyID == companyID && s.IsActive {
			return s, nil
		}
	}
	return model.Service{}, storage.ErrNotFound
}

func (m *memStore) ServiceByID(_ context.Context, companyID, serviceID string) (model.Service, error) {
	for _, s := range m.services {
		if s.ID == serviceID && s.CompanyID == companyID {
			return s, nil
		}
	}
	return model.Service{}, storage.ErrNotFound
}

func (m *memStore) ListBookedIntervals(_ context.Context, companyID, serviceID string, window availability.Interval) ([]availability.Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []availability.Interval
	for _, b := range m.bookings {
		iv := availability.Interval{Start: b.StartTime, End: b.EndTime}
		if b.CompanyID == companyID && b.ServiceID == serviceID && b.Status.Blocking() && iv.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (m *memStore) overlapsLocked(b *model.Booking) bool {
	candidate := availability.Interval{Start: b.StartTime, End: b.EndTime}
	for _, o := range m.bookings {
		if o.ID == b.ID || o.CompanyID != b.CompanyID || o.ServiceID != b.ServiceID || !o.Status.Blocking() {
			continue
		}
		if candidate.Overlaps(availability.Interval{Start: o.StartTime, End: o.EndTime}) {
			return true
		}
	}
	return false
}

func (m *memStore) CreateBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overlapsLocked(b) {
		return storage.ErrOverlap
	}
	b.ID = uuid.NewString()
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *memStore) BookingForCustomer(_ context.Context, id, email string) (model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id && strings.EqualFold(b.CustomerEmail, email) {
			d := model.BookingDetail{Booking: b}
			for _, s := range m.services {
				if s.ID == b.ServiceID {
					d.ServiceName, d.ServiceDuration = s.Name, s.DurationMinutes
				}
			}
			return d, nil
		}
	}
	return model.BookingDetail{}, storage.ErrNotFound
}

func (m *memStore) RescheduleBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overlapsLocked(b) {
		return storage.ErrOverlap
	}
	for i := range m.bookings {
		if m.bookings[i].ID == b.ID && m.bookings[i].Status.Blocking() {
			m.bookings[i] = *b
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) CancelBooking(_ context.Context, id, email string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.ID == id && strings.EqualFold(b.CustomerEmail, email) && b.Status.Blocking() {
			b.Status = model.StatusCancelled
			return *b, nil
		}
	}
	return model.Booking{}, storage.ErrNotFound
}
