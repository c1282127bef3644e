package domain

import "github.com/shopspring/decimal"

// UserCompanyRole defines the role of a user within a company.
type UserCompanyRole string

const (
	RoleAdmin    UserCompanyRole = "ADMIN"
	RoleMember   UserCompanyRole = "MEMBER"
	RoleReadOnly UserCompanyRole = "READ_ONLY"
)

// DefaultAccounts holds the per-company account configuration the document
// posting rules draw on. Empty IDs mean the account is unconfigured; each
// posting rule fails fast when one it requires is missing.
type DefaultAccounts struct {
	AccountsReceivable string `json:"accountsReceivable"`
	AccountsPayable    string `json:"accountsPayable"`
	Sales              string `json:"sales"`
	SalesReturn        string `json:"salesReturn"`
	COGS               string `json:"cogs"`
	Inventory          string `json:"inventory"`
	VATPayable         string `json:"vatPayable"`
	VATReceivable      string `json:"vatReceivable"`
}

// Company is the tenant boundary. All ledger state (accounts, journals,
// documents, parties, items) is scoped to one company, and writes are
// serialized per company.
type Company struct {
	CompanyID        string `json:"companyID"` // Primary Key (UUID)
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"` // All ledger balances kept in this currency

	// Posting configuration.
	VATEnabled      bool            `json:"vatEnabled"`
	VATRate         decimal.Decimal `json:"vatRate"` // Flat rate, e.g. 0.15
	DefaultAccounts DefaultAccounts `json:"defaultAccounts"`

	// AllowNegativeStock permits consuming more stock than is on hand
	// (oversell is not blocked at checkout). Valuation is unaffected.
	AllowNegativeStock bool `json:"allowNegativeStock"`

	IsActive bool `json:"isActive"`
	AuditFields
}

// UserCompany links a user to a company with a role.
type UserCompany struct {
	UserID    string          `json:"userID"`
	CompanyID string          `json:"companyID"`
	Role      UserCompanyRole `json:"role"`
	AuditFields
}

// HasRole reports whether the role grants at least the required role's
// privileges. Ordering: ADMIN > MEMBER > READ_ONLY.
func (r UserCompanyRole) HasRole(required UserCompanyRole) bool {
	rank := map[UserCompanyRole]int{RoleReadOnly: 1, RoleMember: 2, RoleAdmin: 3}
	return rank[r] >= rank[required]
}
