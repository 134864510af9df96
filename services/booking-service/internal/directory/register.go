package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/validation"
	"github.com/shopspring/decimal"
)

const (
	DefaultCountry  = "USA"
	DefaultTimezone = "America/New_York"
	DefaultCurrency = "USD"
)

type FirstService struct {
	Name            string           `json:"name" validate:"required,min=2,max=200"`
	Description     string           `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes int              `json:"duration_minutes" validate:"required,min=5,max=480"`
	Price           *decimal.Decimal `json:"price"`
	Currency        string           `json:"currency" validate:"omitempty,len=3"`
}

type RegisterRequest struct {
	Name        string       `json:"name" validate:"required,min=2,max=200"`
	Slug        string       `json:"slug" validate:"required,min=2,max=100,slug"`
	Email       string       `json:"email" validate:"required,email,max=254"`
	Phone       string       `json:"phone" validate:"omitempty,max=50"`
	Description string       `json:"description" validate:"omitempty,max=2000"`
	Address     string       `json:"address" validate:"omitempty,max=500"`
	City        string       `json:"city" validate:"omitempty,max=200"`
	State       string       `json:"state" validate:"omitempty,max=200"`
	PostalCode  string       `json:"postal_code" validate:"omitempty,max=20"`
	Country     string       `json:"country" validate:"omitempty,max=100"`
	Timezone    string       `json:"timezone" validate:"omitempty,timezone"`
	Website     string       `json:"website" validate:"omitempty,url"`
	Industry    string       `json:"industry" validate:"omitempty,max=50"`
	Service     FirstService `json:"service"`
}

func (r *RegisterRequest) applyDefaults() {
	r.Slug = strings.TrimSpace(r.Slug)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Industry = strings.ToLower(strings.TrimSpace(r.Industry))
	if strings.TrimSpace(r.Country) == "" {
		r.Country = DefaultCountry
	}
	if strings.TrimSpace(r.Timezone) == "" {
		r.Timezone = DefaultTimezone
	}
	r.Service.Name = strings.TrimSpace(r.Service.Name)
	if strings.TrimSpace(r.Service.Currency) == "" {
		r.Service.Currency = DefaultCurrency
	}
	r.Service.Currency = strings.ToUpper(r.Service.Currency)
}

// Register creates an active company with its first service. The slug must be unused.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (model.Company, model.Service, error) {
	req.applyDefaults()
	if err := s.validator.Struct(req); err != nil {
		return model.Company{}, model.Service{}, err
	}
	if req.Service.Price != nil && req.Service.Price.IsNegative() {
		return model.Company{}, model.Service{}, validation.Field("service.price", "must be at least 0")
	}

	c := model.Company{
		Slug:        req.Slug,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Phone),
		Description: req.Description,
		Address:     req.Address,
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Country:     req.Country,
		Timezone:    req.Timezone,
		Website:     req.Website,
		Industry:    req.Industry,
	}
	svc := model.Service{
		Name:            req.Service.Name,
		Description:     req.Service.Description,
		DurationMinutes: req.Service.DurationMinutes,
		Currency:        req.Service.Currency,
	}
	if req.Service.Price != nil {
		svc.Price = decimal.NewNullDecimal(*req.Service.Price)
	}

	if err := s.store.CreateCompanyWithService(ctx, &c, &svc); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.Company{}, model.Service{}, ErrSlugTaken
		}
		return model.Company{}, model.Service{}, err
	}
	return c, svc, nil
}
