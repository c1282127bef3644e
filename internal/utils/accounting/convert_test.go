package accounting_test

import (
	"testing"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/makznkaljaafari/makhzan_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBase(t *testing.T) {
	got, err := accounting.ToBase(decimal.NewFromInt(100), decimal.RequireFromString("3.75"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(375)))
}

func TestFromBase(t *testing.T) {
	got, err := accounting.FromBase(decimal.NewFromInt(375), decimal.RequireFromString("3.75"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))
}

func TestConvert_RejectsNonPositiveRate(t *testing.T) {
	for _, rate := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		_, err := accounting.ToBase(decimal.NewFromInt(10), rate)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRate)

		_, err = accounting.FromBase(decimal.NewFromInt(10), rate)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRate)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	rate := decimal.RequireFromString("1.1837")
	amount := decimal.RequireFromString("57.50")

	base, err := accounting.ToBase(amount, rate)
	require.NoError(t, err)
	back, err := accounting.FromBase(base, rate)
	require.NoError(t, err)

	assert.True(t, accounting.WithinEpsilon(amount, back), "got %s", back)
}

func TestValidateJournalBalance(t *testing.T) {
	accountTypes := map[string]domain.AccountType{
		"ar":    domain.Asset,
		"sales": domain.Revenue,
	}

	balanced := []domain.Transaction{
		{TransactionID: "t1", AccountID: "ar", Amount: decimal.NewFromInt(115), TransactionType: domain.Debit},
		{TransactionID: "t2", AccountID: "sales", Amount: decimal.NewFromInt(115), TransactionType: domain.Credit},
	}
	assert.NoError(t, accounting.ValidateJournalBalance(balanced, accountTypes))

	unbalanced := []domain.Transaction{
		{TransactionID: "t1", AccountID: "ar", Amount: decimal.NewFromInt(115), TransactionType: domain.Debit},
		{TransactionID: "t2", AccountID: "sales", Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
	}
	assert.Error(t, accounting.ValidateJournalBalance(unbalanced, accountTypes))

	single := balanced[:1]
	assert.Error(t, accounting.ValidateJournalBalance(single, accountTypes))
}

func TestCalculateSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		accountType domain.AccountType
		txnType     domain.TransactionType
		want        int64
	}{
		{"debit to asset", domain.Asset, domain.Debit, 10},
		{"credit to asset", domain.Asset, domain.Credit, -10},
		{"debit to revenue", domain.Revenue, domain.Debit, -10},
		{"credit to revenue", domain.Revenue, domain.Credit, 10},
		{"debit to expense", domain.Expense, domain.Debit, 10},
		{"credit to liability", domain.Liability, domain.Credit, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.Transaction{AccountID: "a", Amount: decimal.NewFromInt(10), TransactionType: tt.txnType}
			got, err := accounting.CalculateSignedAmount(txn, tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)))
		})
	}
}
