package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agentbook/libs/db"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/outbox"
)

// ListBookedIntervals returns pending and confirmed bookings of the service that overlap window.
func (r *Repository) ListBookedIntervals(ctx context.Context, companyID, serviceID string, window availability.Interval) ([]availability.Interval, error) {
	rows, err := r.db.Query(ctx, `
		SELECT start_time, end_time
		FROM bookings
		WHERE company_id = $1
			AND service_id = $2
			AND status IN ('pending', 'confirmed')
			AND start_time < $4
			AND end_time > $3
		ORDER BY start_time ASC
	`, companyID, serviceID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.Interval
	for rows.Next() {
		var iv availability.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// lockServiceCalendar serializes writers of one company+service until tx ends.
func lockServiceCalendar(ctx context.Context, tx pgx.Tx, companyID, serviceID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`, companyID, serviceID)
	return err
}

// hasOverlap reports whether a blocking booking other than excludeID overlaps [start, end).
func hasOverlap(ctx context.Context, tx pgx.Tx, companyID, serviceID string, start, end time.Time, excludeID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE company_id = $1
				AND service_id = $2
				AND status IN ('pending', 'confirmed')
				AND start_time < $4
				AND end_time > $3
				AND id::text <> $5
		)
	`, companyID, serviceID, start, end, excludeID).Scan(&exists)
	return exists, err
}

// CreateBooking inserts b after confirming its interval is free, with the created event, in one
// transaction. It fills b.ID and timestamps. A taken interval yields ErrOverlap.
func (r *Repository) CreateBooking(ctx context.Context, b *model.Booking) error {
	id := uuid.NewString()
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockServiceCalendar(ctx, tx, b.CompanyID, b.ServiceID); err != nil {
			return err
		}
		taken, err := hasOverlap(ctx, tx, b.CompanyID, b.ServiceID, b.StartTime, b.EndTime, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrOverlap
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO bookings
				(id, company_id, service_id, customer_name, customer_email, customer_phone, start_time, end_time,
				 status, notes, booked_via, agent_name,
				 patient_date_of_birth, insurance_provider, reason_for_visit, allergies, current_medications)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, NULLIF($10, ''), $11, NULLIF($12, ''),
				NULLIF($13, '')::date, NULLIF($14, ''), NULLIF($15, ''), NULLIF($16, ''), NULLIF($17, ''))
			RETURNING created_at, updated_at
		`, id, b.CompanyID, b.ServiceID, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.StartTime, b.EndTime,
			string(b.Status), b.Notes, b.BookedVia, b.AgentName,
			b.Patient.DateOfBirth, b.Patient.InsuranceProvider, b.Patient.ReasonForVisit, b.Patient.Allergies, b.Patient.CurrentMedications,
		).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		b.ID = id

		evt, err := outbox.BookingEvent(outbox.TypeBookingCreated, *b)
		if err != nil {
			return err
		}
		return outbox.Insert(ctx, tx, evt)
	})
	if err != nil {
		b.ID = ""
	}
	return translate(err)
}

// BookingForCustomer looks a booking up by id and customer email (case-insensitive).
func (r *Repository) BookingForCustomer(ctx context.Context, id, email string) (model.BookingDetail, error) {
	var d model.BookingDetail
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT b.id::text, b.company_id::text, b.service_id::text, b.customer_name, b.customer_email,
			COALESCE(b.customer_phone, ''), b.start_time, b.end_time, b.status, COALESCE(b.notes, ''),
			COALESCE(b.booked_via, ''), COALESCE(b.agent_name, ''),
			COALESCE(to_char(b.patient_date_of_birth, 'YYYY-MM-DD'), ''), COALESCE(b.insurance_provider, ''),
			COALESCE(b.reason_for_visit, ''), COALESCE(b.allergies, ''), COALESCE(b.current_medications, ''),
			b.created_at, b.updated_at,
			c.name, COALESCE(c.phone, ''), COALESCE(c.email, ''),
			s.name, s.duration_minutes
		FROM bookings b
		JOIN companies c ON c.id = b.company_id
		JOIN services s ON s.id = b.service_id
		WHERE b.id = $1 AND lower(b.customer_email) = lower($2)
	`, id, email).Scan(
		&d.ID, &d.CompanyID, &d.ServiceID, &d.CustomerName, &d.CustomerEmail,
		&d.CustomerPhone, &d.StartTime, &d.EndTime, &status, &d.Notes,
		&d.BookedVia, &d.AgentName,
		&d.Patient.DateOfBirth, &d.Patient.InsuranceProvider,
		&d.Patient.ReasonForVisit, &d.Patient.Allergies, &d.Patient.CurrentMedications,
		&d.CreatedAt, &d.UpdatedAt,
		&d.CompanyName, &d.CompanyPhone, &d.CompanyEmail,
		&d.ServiceName, &d.ServiceDuration,
	)
	if err != nil {
		return model.BookingDetail{}, translate(err)
	}
	d.Status = model.BookingStatus(status)
	return d, nil
}

// RescheduleBooking moves b to its (possibly new) service, times, and notes after the same
// overlap check as CreateBooking, ignoring b itself. Only pending or confirmed bookings can be
// moved; otherwise ErrNotFound.
func (r *Repository) RescheduleBooking(ctx context.Context, b *model.Booking) error {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockServiceCalendar(ctx, tx, b.CompanyID, b.ServiceID); err != nil {
			return err
		}
		taken, err := hasOverlap(ctx, tx, b.CompanyID, b.ServiceID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrOverlap
		}

		var status string
		if err := tx.QueryRow(ctx, `
			UPDATE bookings
			SET service_id = $2,
				start_time = $3,
				end_time = $4,
				notes = NULLIF($5, ''),
				updated_at = now()
			WHERE id = $1 AND status IN ('pending', 'confirmed')
			RETURNING status, updated_at
		`, b.ID, b.ServiceID, b.StartTime, b.EndTime, b.Notes).Scan(&status, &b.UpdatedAt); err != nil {
			return err
		}
		b.Status = model.BookingStatus(status)

		evt, err := outbox.BookingEvent(outbox.TypeBookingRescheduled, *b)
		if err != nil {
			return err
		}
		return outbox.Insert(ctx, tx, evt)
	})
	return translate(err)
}

// CancelBooking moves a pending or confirmed booking to cancelled. A missing booking, a wrong
// email, or an already closed booking all yield ErrNotFound.
func (r *Repository) CancelBooking(ctx context.Context, id, email string) (model.Booking, error) {
	var b model.Booking
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var status string
		if err := tx.QueryRow(ctx, `
			UPDATE bookings
			SET status = 'cancelled', updated_at = now()
			WHERE id = $1 AND lower(customer_email) = lower($2) AND status IN ('pending', 'confirmed')
			RETURNING id::text, company_id::text, service_id::text, customer_email, start_time, end_time, status, updated_at
		`, id, email).Scan(&b.ID, &b.CompanyID, &b.ServiceID, &b.CustomerEmail, &b.StartTime, &b.EndTime, &status, &b.UpdatedAt); err != nil {
			return err
		}
		b.Status = model.BookingStatus(status)

		evt, err := outbox.BookingEvent(outbox.TypeBookingCancelled, b)
		if err != nil {
			return err
		}
		return outbox.Insert(ctx, tx, evt)
	})
	if err != nil {
		return model.Booking{}, translate(err)
	}
	return b, nil
}
