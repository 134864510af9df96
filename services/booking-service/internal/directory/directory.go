// Package directory serves the discovery side of the API: company search, service catalogs,
// medical practice lookups, and self-service registration.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrNotMedical      = errors.New("this endpoint is for medical practices only")
	ErrSlugTaken       = errors.New("company slug already exists")
)

// Store is implemented by *storage.Repository.
type Store interface {
	SearchCompanies(ctx context.Context, f storage.CompanyFilter) ([]model.CompanySummary, error)
	CompanyBySlug(ctx context.Context, slug string) (model.Company, error)
	ListServices(ctx context.Context, companyID string) ([]model.Service, error)
	ListStaff(ctx context.Context, companyID string) ([]model.Staff, error)
	CreateCompanyWithService(ctx context.Context, c *model.Company, s *model.Service) error
}

type Service struct {
	store     Store
	validator *validation.Validator
}

func NewService(store Store) *Service {
	return &Service{store: store, validator: validation.NewValidator()}
}

const (
	defaultCompanyLimit = 20
	maxCompanyLimit     = 100
	defaultMedicalLimit = 10
	maxMedicalLimit     = 20
)

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

type SearchQuery struct {
	Search   string
	City     string
	State    string
	Category string
	Limit    int
}

// SearchCompanies lists active companies ordered by name.
func (s *Service) SearchCompanies(ctx context.Context, q SearchQuery) ([]model.CompanySummary, error) {
	return s.store.SearchCompanies(ctx, storage.CompanyFilter{
		Search:   strings.TrimSpace(q.Search),
		City:     strings.TrimSpace(q.City),
		State:    strings.TrimSpace(q.State),
		Category: strings.TrimSpace(q.Category),
		Limit:    clampLimit(q.Limit, defaultCompanyLimit, maxCompanyLimit),
	})
}

type MedicalQuery struct {
	Search    string
	City      string
	State     string
	Specialty string
	Limit     int
}

// SearchMedical is SearchCompanies restricted to medical practices; specialty matches name or description.
func (s *Service) SearchMedical(ctx context.Context, q MedicalQuery) ([]model.CompanySummary, error) {
	return s.store.SearchCompanies(ctx, storage.CompanyFilter{
		Search:   strings.TrimSpace(q.Search),
		City:     strings.TrimSpace(q.City),
		State:    strings.TrimSpace(q.State),
		Category: strings.TrimSpace(q.Specialty),
		Industry: model.IndustryMedical,
		Limit:    clampLimit(q.Limit, defaultMedicalLimit, maxMedicalLimit),
	})
}

type Catalog struct {
	Company  model.Company
	Services []model.Service
}

// CompanyServices returns an active company with its active services ordered by name.
func (s *Service) CompanyServices(ctx context.Context, slug string) (Catalog, error) {
	company, err := s.company(ctx, slug)
	if err != nil {
		return Catalog{}, err
	}
	services, err := s.store.ListServices(ctx, company.ID)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Company: company, Services: services}, nil
}

func (s *Service) company(ctx context.Context, slug string) (model.Company, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Company{}, validation.New("Missing company parameter", "Use ?company=company-slug")
	}
	c, err := s.store.CompanyBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Company{}, ErrCompanyNotFound
		}
		return model.Company{}, err
	}
	return c, nil
}
