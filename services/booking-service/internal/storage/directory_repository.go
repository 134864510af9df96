package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agentbook/libs/db"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/outbox"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const companyColumns = `id::text, slug, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(description, ''),
	COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(postal_code, ''), COALESCE(country, ''),
	COALESCE(timezone, ''), COALESCE(website, ''), COALESCE(industry, ''), is_active, created_at`

func scanCompany(row pgx.Row, c *model.Company, extra ...any) error {
	dest := []any{
		&c.ID, &c.Slug, &c.Name, &c.Email, &c.Phone, &c.Description,
		&c.Address, &c.City, &c.State, &c.PostalCode, &c.Country,
		&c.Timezone, &c.Website, &c.Industry, &c.IsActive, &c.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// CompanyBySlug returns an active company.
func (r *Repository) CompanyBySlug(ctx context.Context, slug string) (model.Company, error) {
	var c model.Company
	err := scanCompany(r.db.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE slug = $1 AND is_active
	`, slug), &c)
	if err != nil {
		return model.Company{}, translate(err)
	}
	return c, nil
}

// CompanyByID returns a company regardless of its active flag; existing bookings stay manageable.
func (r *Repository) CompanyByID(ctx context.Context, id string) (model.Company, error) {
	var c model.Company
	err := scanCompany(r.db.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE id = $1
	`, id), &c)
	if err != nil {
		return model.Company{}, translate(err)
	}
	return c, nil
}

type CompanyFilter struct {
	Search   string
	City     string
	State    string
	Category string
	Industry string
	Limit    int
}

// SearchCompanies lists active companies by name. Text filters are case-insensitive substrings.
func (r *Repository) SearchCompanies(ctx context.Context, f CompanyFilter) ([]model.CompanySummary, error) {
	var (
		where = []string{"c.is_active"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.City != "" {
		where = append(where, "c.city ILIKE "+arg(likePattern(f.City)))
	}
	if f.State != "" {
		where = append(where, "c.state ILIKE "+arg(likePattern(f.State)))
	}
	if f.Search != "" {
		p := arg(likePattern(f.Search))
		where = append(where, "(c.name ILIKE "+p+" OR c.city ILIKE "+p+" OR c.description ILIKE "+p+")")
	}
	if f.Category != "" {
		p := arg(likePattern(f.Category))
		where = append(where, "(c.name ILIKE "+p+" OR c.description ILIKE "+p+")")
	}
	if f.Industry != "" {
		where = append(where, "c.industry = "+arg(f.Industry))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	limitArg := arg(limit)

	rows, err := r.db.Query(ctx, `
		SELECT `+companyColumns+`,
			(SELECT count(*) FROM services s WHERE s.company_id = c.id AND s.is_active)
		FROM companies c
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY c.name
		LIMIT `+limitArg, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CompanySummary
	for rows.Next() {
		var cs model.CompanySummary
		var count int64
		if err := scanCompany(rows, &cs.Company, &count); err != nil {
			return nil, err
		}
		cs.ServicesCount = int(count)
		out = append(out, cs)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// likePattern wraps s in % after escaping LIKE metacharacters.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

const serviceColumns = `id::text, company_id::text, name, COALESCE(description, ''), duration_minutes,
	COALESCE(price::text, ''), COALESCE(currency, ''), COALESCE(buffer_time_minutes, 0), is_active`

func scanService(row pgx.Row, s *model.Service) error {
	var price string
	if err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.DurationMinutes,
		&price, &s.Currency, &s.BufferTimeMinutes, &s.IsActive); err != nil {
		return err
	}
	if price != "" {
		d, err := decimal.NewFromString(price)
		if err != nil {
			return err
		}
		s.Price = decimal.NewNullDecimal(d)
	}
	return nil
}

// ServiceForCompany returns an active service owned by companyID.
func (r *Repository) ServiceForCompany(ctx context.Context, companyID, serviceID string) (model.Service, error) {
	var s model.Service
	err := scanService(r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1 AND company_id = $2 AND is_active
	`, serviceID, companyID), &s)
	if err != nil {
		return model.Service{}, translate(err)
	}
	return s, nil
}

// ServiceByID returns a service owned by companyID whether or not it is still active.
func (r *Repository) ServiceByID(ctx context.Context, companyID, serviceID string) (model.Service, error) {
	var s model.Service
	err := scanService(r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1 AND company_id = $2
	`, serviceID, companyID), &s)
	if err != nil {
		return model.Service{}, translate(err)
	}
	return s, nil
}

func (r *Repository) ListServices(ctx context.Context, companyID string) ([]model.Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE company_id = $1 AND is_active
		ORDER BY name
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := scanService(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListStaff(ctx context.Context, companyID string) ([]model.Staff, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, company_id::text, name, COALESCE(email, ''), role, is_active
		FROM staff
		WHERE company_id = $1 AND is_active
		ORDER BY name
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Email, &s.Role, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// CreateCompanyWithService inserts a company, its first service, and the registration event
// in one transaction. A taken slug yields ErrDuplicate. IDs are assigned on c and s.
func (r *Repository) CreateCompanyWithService(ctx context.Context, c *model.Company, s *model.Service) error {
	c.ID = uuid.NewString()
	s.ID = uuid.NewString()
	s.CompanyID = c.ID

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO companies
				(id, slug, name, email, phone, description, address, city, state, postal_code, country, timezone, website, industry, is_active)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
				NULLIF($10, ''), $11, $12, NULLIF($13, ''), NULLIF($14, ''), true)
			RETURNING created_at
		`, c.ID, c.Slug, c.Name, c.Email, c.Phone, c.Description, c.Address, c.City, c.State,
			c.PostalCode, c.Country, c.Timezone, c.Website, c.Industry).Scan(&c.CreatedAt); err != nil {
			return err
		}
		c.IsActive = true

		var price any
		if s.Price.Valid {
			price = s.Price.Decimal.String()
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO services (id, company_id, name, description, duration_minutes, price, currency, buffer_time_minutes, is_active)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6::numeric, $7, $8, true)
		`, s.ID, s.CompanyID, s.Name, s.Description, s.DurationMinutes, price, s.Currency, s.BufferTimeMinutes); err != nil {
			return err
		}
		s.IsActive = true

		evt, err := outbox.CompanyRegisteredEvent(*c, *s)
		if err != nil {
			return err
		}
		return outbox.Insert(ctx, tx, evt)
	})
	return translate(err)
}
