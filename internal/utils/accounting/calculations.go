package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
)

// knownAccountTypes is the closed set the sign convention is defined over.
var knownAccountTypes = map[domain.AccountType]bool{
	domain.Asset:     true,
	domain.Liability: true,
	domain.Equity:    true,
	domain.Revenue:   true,
	domain.Expense:   true,
}

// CalculateSignedAmount converts a journal line into the signed delta it
// applies to its account's running balance. A line on the account's natural
// side (debit for asset/expense, credit for the rest) increases the balance;
// the opposite side decreases it.
func CalculateSignedAmount(txn domain.Transaction, accountType domain.AccountType) (decimal.Decimal, error) {
	if !knownAccountTypes[accountType] {
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, txn.AccountID)
	}

	debitNatural := accountType.NaturalSign() > 0
	if (txn.TransactionType == domain.Debit) == debitNatural {
		return txn.Amount, nil
	}
	return txn.Amount.Neg(), nil
}

// ValidateJournalBalance checks that a journal's lines are individually
// positive and that their signed deltas sum to zero across the ledger.
func ValidateJournalBalance(transactions []domain.Transaction, accountTypes map[string]domain.AccountType) error {
	if len(transactions) < 2 {
		return fmt.Errorf("journal must have at least two transaction entries")
	}

	sum := decimal.Zero
	for _, txn := range transactions {
		if txn.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("transaction amount must be positive for transaction %s", txn.TransactionID)
		}

		accountType, ok := accountTypes[txn.AccountID]
		if !ok {
			return fmt.Errorf("account type not found for account %s", txn.AccountID)
		}

		signed, err := CalculateSignedAmount(txn, accountType)
		if err != nil {
			return err
		}
		sum = sum.Add(signed)
	}

	if !sum.IsZero() {
		return fmt.Errorf("journal entries do not balance to zero: sum is %s", sum.String())
	}
	return nil
}
