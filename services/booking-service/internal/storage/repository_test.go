package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/outbox"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	companyID = "0b6c1c1e-7a55-4d0e-9a3c-7f1d2a000001"
	serviceID = "0b6c1c1e-7a55-4d0e-9a3c-7f1d2a000002"
	bookingID = "9f1e2d3c-0000-4000-8000-000000000003"
)

type RepositoryTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *Repository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.repo = NewRepository(mock)
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

var companyCols = []string{"id", "slug", "name", "email", "phone", "description", "address", "city", "state",
	"postal_code", "country", "timezone", "website", "industry", "is_active", "created_at"}

func (s *RepositoryTestSuite) TestCompanyBySlug() {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM companies")).
		WithArgs("test-dental").
		WillReturnRows(pgxmock.NewRows(companyCols).AddRow(
			companyID, "test-dental", "Test Dental Clinic", "info@test.example", "555-0100", "Dental care",
			"1 Main St", "San Francisco", "CA", "94105", "USA", "America/Los_Angeles", "", "medical", true, created))

	c, err := s.repo.CompanyBySlug(s.ctx, "test-dental")
	s.Require().NoError(err)
	s.Equal(companyID, c.ID)
	s.Equal("America/Los_Angeles", c.Timezone)
	s.True(c.IsMedical())
}

func (s *RepositoryTestSuite) TestCompanyBySlugNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM companies")).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.repo.CompanyBySlug(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}

var serviceCols = []string{"id", "company_id", "name", "description", "duration_minutes", "price", "currency", "buffer_time_minutes", "is_active"}

func (s *RepositoryTestSuite) TestServiceForCompanyParsesPrice() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(serviceID, companyID).
		WillReturnRows(pgxmock.NewRows(serviceCols).
			AddRow(serviceID, companyID, "Cleaning", "", 30, "89.50", "USD", 0, true))

	svc, err := s.repo.ServiceForCompany(s.ctx, companyID, serviceID)
	s.Require().NoError(err)
	s.Equal(30*time.Minute, svc.Duration())
	s.True(svc.Price.Valid)
	s.Equal("89.5", svc.Price.Decimal.String())
}

func (s *RepositoryTestSuite) TestServiceByIDIncludesInactive() {
	s.mock.ExpectQuery(`FROM services\s+WHERE id = \$1 AND company_id = \$2\s*$`).
		WithArgs(serviceID, companyID).
		WillReturnRows(pgxmock.NewRows(serviceCols).
			AddRow(serviceID, companyID, "Cleaning", "", 30, "", "USD", 0, false))

	svc, err := s.repo.ServiceByID(s.ctx, companyID, serviceID)
	s.Require().NoError(err)
	s.Equal(serviceID, svc.ID)
	s.False(svc.IsActive)
}

func (s *RepositoryTestSuite) TestServiceByIDNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(serviceID, companyID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.repo.ServiceByID(s.ctx, companyID, serviceID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestListServicesWithoutPrice() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WithArgs(companyID).
		WillReturnRows(pgxmock.NewRows(serviceCols).
			AddRow(serviceID, companyID, "Consultation", "Free intro", 15, "", "USD", 5, true))

	list, err := s.repo.ListServices(s.ctx, companyID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.False(list[0].Price.Valid)
	s.Equal(5, list[0].BufferTimeMinutes)
}

func (s *RepositoryTestSuite) TestSearchCompaniesBuildsFilters() {
	created := time.Now()
	s.mock.ExpectQuery(`c\.city ILIKE \$1 AND .*c\.industry = \$2.*LIMIT \$3`).
		WithArgs("%Spring\\_field%", "medical", 10).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, companyCols...), "count")).AddRow(
			companyID, "test-dental", "Test Dental Clinic", "", "", "", "", "Spring_field", "", "", "", "", "", "medical", true, created, int64(3)))

	out, err := s.repo.SearchCompanies(s.ctx, CompanyFilter{City: "Spring_field", Industry: "medical", Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(3, out[0].ServicesCount)
}

func (s *RepositoryTestSuite) TestListBookedIntervals() {
	window := availability.Interval{
		Start: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2030, 1, 1, 17, 0, 0, 0, time.UTC),
	}
	bs := time.Date(2030, 1, 1, 14, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(regexp.QuoteMeta("AND start_time < $4")).
		WithArgs(companyID, serviceID, window.Start, window.End).
		WillReturnRows(pgxmock.NewRows([]string{"start_time", "end_time"}).AddRow(bs, bs.Add(30*time.Minute)))

	got, err := s.repo.ListBookedIntervals(s.ctx, companyID, serviceID, window)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(got[0].Start.Equal(bs))
}

func (s *RepositoryTestSuite) newBooking() *model.Booking {
	start := time.Date(2030, 1, 1, 14, 30, 0, 0, time.UTC)
	return &model.Booking{
		CompanyID:     companyID,
		ServiceID:     serviceID,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Status:        model.StatusConfirmed,
		BookedVia:     model.BookedViaAIAgent,
		AgentName:     model.DefaultAgentName,
	}
}

func (s *RepositoryTestSuite) expectLockAndOverlap(b *model.Booking, excludeID string, taken bool) {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs(b.CompanyID, b.ServiceID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(b.CompanyID, b.ServiceID, b.StartTime, b.EndTime, excludeID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(taken))
}

// insertArgs matches the 17 bookings insert placeholders; the id is generated.
func insertArgs(b *model.Booking) []any {
	return []any{
		pgxmock.AnyArg(), b.CompanyID, b.ServiceID, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.StartTime, b.EndTime,
		string(b.Status), b.Notes, b.BookedVia, b.AgentName,
		b.Patient.DateOfBirth, b.Patient.InsuranceProvider, b.Patient.ReasonForVisit, b.Patient.Allergies, b.Patient.CurrentMedications,
	}
}

// companyArgs matches the 14 companies insert placeholders; the id is generated.
func companyArgs(c *model.Company) []any {
	return []any{
		pgxmock.AnyArg(), c.Slug, c.Name, c.Email, c.Phone, c.Description, c.Address, c.City, c.State,
		c.PostalCode, c.Country, c.Timezone, c.Website, c.Industry,
	}
}

func (s *RepositoryTestSuite) TestCreateBooking() {
	b := s.newBooking()
	now := time.Now()
	s.expectLockAndOverlap(b, "", false)
	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(insertArgs(b)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("booking", pgxmock.AnyArg(), outbox.TypeBookingCreated, pgxmock.AnyArg(), "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.Require().NoError(s.repo.CreateBooking(s.ctx, b))
	s.NotEmpty(b.ID)
	s.Len(b.ConfirmationNumber(), 8)
	s.Equal(now, b.CreatedAt)
}

func (s *RepositoryTestSuite) TestCreateBookingOverlapPrecheck() {
	b := s.newBooking()
	s.expectLockAndOverlap(b, "", true)
	s.mock.ExpectRollback()

	err := s.repo.CreateBooking(s.ctx, b)
	s.ErrorIs(err, ErrOverlap)
	s.Empty(b.ID)
}

func (s *RepositoryTestSuite) TestCreateBookingExclusionViolation() {
	b := s.newBooking()
	s.expectLockAndOverlap(b, "", false)
	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(insertArgs(b)...).
		WillReturnError(&pgconn.PgError{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})
	s.mock.ExpectRollback()

	err := s.repo.CreateBooking(s.ctx, b)
	s.ErrorIs(err, ErrOverlap)
}

func (s *RepositoryTestSuite) TestRescheduleExcludesItself() {
	b := s.newBooking()
	b.ID = bookingID
	now := time.Now()
	s.expectLockAndOverlap(b, bookingID, false)
	s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings")).
		WithArgs(bookingID, serviceID, b.StartTime, b.EndTime, "").
		WillReturnRows(pgxmock.NewRows([]string{"status", "updated_at"}).AddRow("confirmed", now))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("booking", bookingID, outbox.TypeBookingRescheduled, pgxmock.AnyArg(), "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.Require().NoError(s.repo.RescheduleBooking(s.ctx, b))
	s.Equal(model.StatusConfirmed, b.Status)
}

func (s *RepositoryTestSuite) TestRescheduleClosedBooking() {
	b := s.newBooking()
	b.ID = bookingID
	s.expectLockAndOverlap(b, bookingID, false)
	s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings")).
		WithArgs(bookingID, serviceID, b.StartTime, b.EndTime, "").
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectRollback()

	s.ErrorIs(s.repo.RescheduleBooking(s.ctx, b), ErrNotFound)
}

func (s *RepositoryTestSuite) TestCancelBooking() {
	start := time.Date(2030, 1, 1, 14, 0, 0, 0, time.UTC)
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(bookingID, "ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_id", "service_id", "customer_email", "start_time", "end_time", "status", "updated_at"}).
			AddRow(bookingID, companyID, serviceID, "ada@example.com", start, start.Add(30*time.Minute), "cancelled", time.Now()))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("booking", bookingID, outbox.TypeBookingCancelled, pgxmock.AnyArg(), "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	b, err := s.repo.CancelBooking(s.ctx, bookingID, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(model.StatusCancelled, b.Status)
}

func (s *RepositoryTestSuite) TestCancelBookingNotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'cancelled'")).
		WithArgs(bookingID, "wrong@example.com").
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectRollback()

	_, err := s.repo.CancelBooking(s.ctx, bookingID, "wrong@example.com")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestBookingForCustomer() {
	start := time.Date(2030, 1, 1, 14, 0, 0, 0, time.UTC)
	now := time.Now()
	s.mock.ExpectQuery(regexp.QuoteMeta("JOIN companies c ON c.id = b.company_id")).
		WithArgs(bookingID, "ADA@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "company_id", "service_id", "customer_name", "customer_email", "customer_phone", "start_time", "end_time",
			"status", "notes", "booked_via", "agent_name", "dob", "insurance", "reason", "allergies", "medications",
			"created_at", "updated_at", "company_name", "company_phone", "company_email", "service_name", "duration",
		}).AddRow(
			bookingID, companyID, serviceID, "Ada", "ada@example.com", "", start, start.Add(30*time.Minute),
			"confirmed", "", "ai_agent", "Claude", "", "", "", "", "",
			now, now, "Test Dental Clinic", "555-0100", "info@test.example", "Cleaning", 30,
		))

	d, err := s.repo.BookingForCustomer(s.ctx, bookingID, "ADA@example.com")
	s.Require().NoError(err)
	s.Equal("Test Dental Clinic", d.CompanyName)
	s.Equal(30, d.ServiceDuration)
	s.Equal(model.StatusConfirmed, d.Status)
	s.True(d.EndTime.Equal(start.Add(30 * time.Minute)))
}

func (s *RepositoryTestSuite) TestCreateCompanyWithServiceDuplicateSlug() {
	c := &model.Company{Slug: "taken", Name: "Taken Co", Email: "a@b.co", Country: "USA", Timezone: "America/New_York"}
	svc := &model.Service{Name: "Intro", DurationMinutes: 30, Currency: "USD"}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO companies")).
		WithArgs(companyArgs(c)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	s.mock.ExpectRollback()

	err := s.repo.CreateCompanyWithService(s.ctx, c, svc)
	s.ErrorIs(err, ErrDuplicate)
}

func (s *RepositoryTestSuite) TestCreateCompanyWithService() {
	c := &model.Company{Slug: "new-co", Name: "New Co", Email: "a@b.co", Country: "USA", Timezone: "America/New_York"}
	svc := &model.Service{Name: "Intro", DurationMinutes: 30, Currency: "USD"}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO companies")).
		WithArgs(companyArgs(c)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO services")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Intro", "", 30, nil, "USD", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("company", pgxmock.AnyArg(), outbox.TypeCompanyRegistered, pgxmock.AnyArg(), "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.Require().NoError(s.repo.CreateCompanyWithService(s.ctx, c, svc))
	s.NotEmpty(c.ID)
	s.Equal(c.ID, svc.CompanyID)
	s.True(c.IsActive)
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23P01"}), ErrOverlap)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func (s *RepositoryTestSuite) TestCompanyByID() {
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(companyID).
		WillReturnRows(pgxmock.NewRows(companyCols).AddRow(
			companyID, "old-co", "Old Co", "", "", "", "", "", "", "", "", "", "", "", false, time.Now()))

	c, err := s.repo.CompanyByID(s.ctx, companyID)
	s.Require().NoError(err)
	s.False(c.IsActive)
	s.Equal(time.UTC, c.Location())
}
