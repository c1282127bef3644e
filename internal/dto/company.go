package dto

import (
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultAccountsPayload mirrors domain.DefaultAccounts for requests and
// responses. All fields optional on input; unset accounts simply make the
// posting rules that need them fail until configured.
type DefaultAccountsPayload struct {
	AccountsReceivable string `json:"accountsReceivable"`
	AccountsPayable    string `json:"accountsPayable"`
	Sales              string `json:"sales"`
	SalesReturn        string `json:"salesReturn"`
	COGS               string `json:"cogs"`
	Inventory          string `json:"inventory"`
	VATPayable         string `json:"vatPayable"`
	VATReceivable      string `json:"vatReceivable"`
}

// CreateCompanyRequest defines data for creating a new company.
type CreateCompanyRequest struct {
	Name             string `json:"name" binding:"required"`
	BaseCurrencyCode string `json:"baseCurrencyCode" binding:"required,currencycode"`
}

// UpdateCompanySettingsRequest updates the posting configuration.
// Pointers distinguish "leave unchanged" from explicit zero values.
type UpdateCompanySettingsRequest struct {
	Name               *string                 `json:"name"`
	VATEnabled         *bool                   `json:"vatEnabled"`
	VATRate            *decimal.Decimal        `json:"vatRate"`
	AllowNegativeStock *bool                   `json:"allowNegativeStock"`
	DefaultAccounts    *DefaultAccountsPayload `json:"defaultAccounts"`
}

// CompanyResponse defines data returned for a company.
type CompanyResponse struct {
	CompanyID          string                 `json:"companyID"`
	Name               string                 `json:"name"`
	BaseCurrencyCode   string                 `json:"baseCurrencyCode"`
	VATEnabled         bool                   `json:"vatEnabled"`
	VATRate            decimal.Decimal        `json:"vatRate"`
	AllowNegativeStock bool                   `json:"allowNegativeStock"`
	DefaultAccounts    DefaultAccountsPayload `json:"defaultAccounts"`
	IsActive           bool                   `json:"isActive"`
	CreatedAt          time.Time              `json:"createdAt"`
	CreatedBy          string                 `json:"createdBy"`
	LastUpdatedAt      time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy      string                 `json:"lastUpdatedBy"`
}

// ToCompanyResponse converts domain.Company to DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:          c.CompanyID,
		Name:               c.Name,
		BaseCurrencyCode:   c.BaseCurrencyCode,
		VATEnabled:         c.VATEnabled,
		VATRate:            c.VATRate,
		AllowNegativeStock: c.AllowNegativeStock,
		DefaultAccounts:    DefaultAccountsPayload(c.DefaultAccounts),
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
		CreatedBy:          c.CreatedBy,
		LastUpdatedAt:      c.LastUpdatedAt,
		LastUpdatedBy:      c.LastUpdatedBy,
	}
}

// ToListCompaniesResponse converts a slice of domain.Company to DTOs.
func ToListCompaniesResponse(cs []domain.Company) []CompanyResponse {
	list := make([]CompanyResponse, len(cs))
	for i, c := range cs {
		list[i] = ToCompanyResponse(&c)
	}
	return list
}

// AddUserToCompanyRequest defines data for adding a user to a company.
type AddUserToCompanyRequest struct {
	UserID string                 `json:"userID" binding:"required"`
	Role   domain.UserCompanyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READ_ONLY"`
}
