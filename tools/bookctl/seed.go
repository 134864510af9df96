package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agentbook/libs/config"
	"github.com/md-rashed-zaman/agentbook/libs/db"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/migrations"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type FixtureService struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	DurationMinutes int      `yaml:"duration_minutes"`
	Price           *float64 `yaml:"price"`
	Currency        string   `yaml:"currency"`
	BufferMinutes   int      `yaml:"buffer_minutes"`
}

type FixtureStaff struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type FixtureCompany struct {
	Slug        string           `yaml:"slug"`
	Name        string           `yaml:"name"`
	Email       string           `yaml:"email"`
	Phone       string           `yaml:"phone"`
	Description string           `yaml:"description"`
	Address     string           `yaml:"address"`
	City        string           `yaml:"city"`
	State       string           `yaml:"state"`
	PostalCode  string           `yaml:"postal_code"`
	Country     string           `yaml:"country"`
	Timezone    string           `yaml:"timezone"`
	Website     string           `yaml:"website"`
	Industry    string           `yaml:"industry"`
	Services    []FixtureService `yaml:"services"`
	Staff       []FixtureStaff   `yaml:"staff"`
}

type Fixtures struct {
	Companies []FixtureCompany `yaml:"companies"`
}

// defaultFixtures is the demo clinic used when no file is given.
func defaultFixtures() Fixtures {
	price := func(v float64) *float64 { return &v }
	fx := Fixtures{Companies: []FixtureCompany{{
		Slug:        "test-dental",
		Name:        "Test Dental Clinic",
		Email:       "contact@testdental.com",
		Phone:       "+1 (555) 123-4567",
		Description: "A friendly dental clinic for testing AI booking",
		Timezone:    "America/New_York",
		Services: []FixtureService{
			{Name: "Dental Cleaning", Description: "Regular dental cleaning and checkup", DurationMinutes: 30, Price: price(100)},
			{Name: "Dental Checkup", Description: "Comprehensive dental examination", DurationMinutes: 45, Price: price(150)},
			{Name: "Teeth Whitening", Description: "Professional teeth whitening service", DurationMinutes: 60, Price: price(300)},
		},
	}}}
	for i := range fx.Companies {
		_ = fx.Companies[i].normalize()
	}
	return fx
}

func ParseFixtures(raw []byte) (Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	for i := range fx.Companies {
		if err := fx.Companies[i].normalize(); err != nil {
			return Fixtures{}, fmt.Errorf("company %d: %w", i, err)
		}
	}
	return fx, nil
}

func (c *FixtureCompany) normalize() error {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.Slug == "" || strings.TrimSpace(c.Name) == "" {
		return errors.New("slug and name are required")
	}
	if c.Country == "" {
		c.Country = "USA"
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || strings.EqualFold(c.Timezone, "local") {
		return fmt.Errorf("%s: invalid timezone %q", c.Slug, c.Timezone)
	}
	for i := range c.Services {
		s := &c.Services[i]
		if s.DurationMinutes < 5 || s.DurationMinutes > 480 {
			return fmt.Errorf("%s: service %q duration must be between 5 and 480 minutes", c.Slug, s.Name)
		}
		if s.Price != nil && *s.Price < 0 {
			return fmt.Errorf("%s: service %q price must be at least 0", c.Slug, s.Name)
		}
		if s.Currency == "" {
			s.Currency = "USD"
		}
	}
	for i := range c.Staff {
		if c.Staff[i].Role == "" {
			c.Staff[i].Role = "staff"
		}
	}
	return nil
}

type SeedResult struct {
	Created []string
	Skipped []string
}

// Seed inserts every fixture company with its services and staff in one transaction.
// Companies whose slug already exists are left untouched.
func Seed(ctx context.Context, q db.Querier, fx Fixtures) (SeedResult, error) {
	var res SeedResult
	err := db.WithTx(ctx, q, func(tx pgx.Tx) error {
		for _, c := range fx.Companies {
			var id string
			err := tx.QueryRow(ctx, `
				INSERT INTO companies
					(slug, name, email, phone, description, address, city, state, postal_code, country, timezone, website, industry)
				VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
					NULLIF($9, ''), $10, $11, NULLIF($12, ''), NULLIF($13, ''))
				ON CONFLICT (slug) DO NOTHING
				RETURNING id::text
			`, c.Slug, c.Name, c.Email, c.Phone, c.Description, c.Address, c.City, c.State,
				c.PostalCode, c.Country, c.Timezone, c.Website, c.Industry).Scan(&id)
			if errors.Is(err, pgx.ErrNoRows) {
				res.Skipped = append(res.Skipped, c.Slug)
				continue
			}
			if err != nil {
				return fmt.Errorf("insert company %s: %w", c.Slug, err)
			}

			for _, s := range c.Services {
				var price any
				if s.Price != nil {
					price = decimal.NewFromFloat(*s.Price).StringFixed(2)
				}
				if _, err := tx.Exec(ctx, `
					INSERT INTO services (company_id, name, description, duration_minutes, price, currency, buffer_time_minutes)
					VALUES ($1, $2, NULLIF($3, ''), $4, $5::numeric, $6, $7)
				`, id, s.Name, s.Description, s.DurationMinutes, price, s.Currency, s.BufferMinutes); err != nil {
					return fmt.Errorf("insert service %s/%s: %w", c.Slug, s.Name, err)
				}
			}
			for _, st := range c.Staff {
				if _, err := tx.Exec(ctx, `
					INSERT INTO staff (company_id, name, email, role)
					VALUES ($1, $2, NULLIF($3, ''), $4)
				`, id, st.Name, st.Email, st.Role); err != nil {
					return fmt.Errorf("insert staff %s/%s: %w", c.Slug, st.Name, err)
				}
			}
			res.Created = append(res.Created, c.Slug)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}

func runSeed(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("seed", out)
	dsn := fs.String("database-url", config.String("DATABASE_URL", ""), "Postgres DSN")
	file := fs.StringP("file", "f", "", "YAML fixture file (default: built-in demo clinic)")
	migrate := fs.Bool("migrate", false, "apply the embedded schema before seeding")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dsn == "" {
		return errors.New("--database-url or DATABASE_URL is required")
	}

	fx := defaultFixtures()
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		if fx, err = ParseFixtures(raw); err != nil {
			return err
		}
	}

	pool, err := db.Open(ctx, *dsn, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	if *migrate {
		applied, err := db.Migrate(ctx, pool, migrations.FS)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %s\n", strings.Join(applied, ", "))
	}

	res, err := Seed(ctx, pool, fx)
	if err != nil {
		return err
	}
	for _, slug := range res.Created {
		fmt.Fprintf(out, "created %s\n", slug)
	}
	for _, slug := range res.Skipped {
		fmt.Fprintf(out, "skipped %s (slug exists)\n", slug)
	}
	return nil
}
