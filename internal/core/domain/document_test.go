package domain_test

import (
	"testing"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDocument_Remaining(t *testing.T) {
	tests := []struct {
		name     string
		doc      domain.Document
		want     string
		wantBase string
	}{
		{
			name: "unpaid foreign currency document",
			doc: domain.Document{
				Total:        decimal.NewFromInt(100),
				PaidAmount:   decimal.Zero,
				ExchangeRate: decimal.NewFromFloat(3.75),
			},
			want:     "100",
			wantBase: "375",
		},
		{
			name: "partially paid document",
			doc: domain.Document{
				Total:        decimal.NewFromInt(100),
				PaidAmount:   decimal.NewFromInt(40),
				ExchangeRate: decimal.NewFromInt(1),
			},
			want:     "60",
			wantBase: "60",
		},
		{
			name: "fully paid document",
			doc: domain.Document{
				Total:        decimal.RequireFromString("57.50"),
				PaidAmount:   decimal.RequireFromString("57.50"),
				ExchangeRate: decimal.NewFromInt(1),
			},
			want:     "0",
			wantBase: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.doc.Remaining().Equal(decimal.RequireFromString(tt.want)))
			assert.True(t, tt.doc.RemainingBase().Equal(decimal.RequireFromString(tt.wantBase)))
		})
	}
}

func TestAccountType_NaturalSign(t *testing.T) {
	assert.Equal(t, 1, domain.Asset.NaturalSign())
	assert.Equal(t, 1, domain.Expense.NaturalSign())
	assert.Equal(t, -1, domain.Liability.NaturalSign())
	assert.Equal(t, -1, domain.Equity.NaturalSign())
	assert.Equal(t, -1, domain.Revenue.NaturalSign())
}

func TestUserCompanyRole_HasRole(t *testing.T) {
	assert.True(t, domain.RoleAdmin.HasRole(domain.RoleMember))
	assert.True(t, domain.RoleMember.HasRole(domain.RoleReadOnly))
	assert.True(t, domain.RoleMember.HasRole(domain.RoleMember))
	assert.False(t, domain.RoleReadOnly.HasRole(domain.RoleMember))
	assert.False(t, domain.RoleMember.HasRole(domain.RoleAdmin))
}

func TestDocumentKind_IsReceivable(t *testing.T) {
	assert.True(t, domain.SaleDoc.IsReceivable())
	assert.True(t, domain.PurchaseReturnDoc.IsReceivable())
	assert.False(t, domain.PurchaseOrderDoc.IsReceivable())
	assert.False(t, domain.SalesReturnDoc.IsReceivable())
}
