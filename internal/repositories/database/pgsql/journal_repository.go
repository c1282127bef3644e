package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	"github.com/makznkaljaafari/makhzan_ledger/internal/models"
	"github.com/makznkaljaafari/makhzan_ledger/internal/utils/accounting"
	"github.com/makznkaljaafari/makhzan_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal and
// transaction data. The account repository is injected for row locking and
// balance updates inside SaveJournal's database transaction.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func toModelJournal(j domain.Journal) models.Journal {
	return models.Journal{
		JournalID:          j.JournalID,
		CompanyID:          j.CompanyID,
		EntryNumber:        j.EntryNumber,
		JournalDate:        j.JournalDate,
		Description:        j.Description,
		CurrencyCode:       j.CurrencyCode,
		Status:             string(j.Status),
		Amount:             j.Amount,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		AuditFields: models.AuditFields{
			CreatedAt:     j.CreatedAt,
			CreatedBy:     j.CreatedBy,
			LastUpdatedAt: j.LastUpdatedAt,
			LastUpdatedBy: j.LastUpdatedBy,
		},
	}
}

func toDomainJournal(m models.Journal) domain.Journal {
	return domain.Journal{
		JournalID:          m.JournalID,
		CompanyID:          m.CompanyID,
		EntryNumber:        m.EntryNumber,
		JournalDate:        m.JournalDate,
		Description:        m.Description,
		CurrencyCode:       m.CurrencyCode,
		Status:             domain.JournalStatus(m.Status),
		Amount:             m.Amount,
		OriginalJournalID:  m.OriginalJournalID,
		ReversingJournalID: m.ReversingJournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		JournalID:       m.JournalID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		TransactionType: domain.TransactionType(m.TransactionType),
		Notes:           m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		RunningBalance: m.RunningBalance,
	}
}

// NextEntryNumber allocates the next human-readable entry number for a
// company, e.g. JE-000042. The per-company counter row is upserted so the
// first journal of a company needs no prior seeding.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context, companyID string) (string, error) {
	query := `
		INSERT INTO journal_sequences (company_id, next_value)
		VALUES ($1, 2)
		ON CONFLICT (company_id) DO UPDATE SET next_value = journal_sequences.next_value + 1
		RETURNING next_value - 1;
	`
	var seq int64
	if err := r.Pool.QueryRow(ctx, query, companyID).Scan(&seq); err != nil {
		return "", apperrors.NewAppError(500, "failed to allocate entry number for company "+companyID, err)
	}
	return fmt.Sprintf("JE-%06d", seq), nil
}

// SaveJournal persists a journal, its transaction lines and the resulting
// account balance changes in one database transaction. The touched accounts
// are locked FOR UPDATE first so running balances and the stored balances
// cannot drift apart under concurrent postings.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := journal.CreatedAt
	userID := journal.CreatedBy

	m := toModelJournal(journal)
	journalQuery := `
		INSERT INTO journals (
			journal_id, company_id, entry_number, journal_date, description,
			currency_code, status, amount, original_journal_id, reversing_journal_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, journalQuery,
		m.JournalID,
		m.CompanyID,
		m.EntryNumber,
		m.JournalDate,
		m.Description,
		m.CurrencyCode,
		m.Status,
		m.Amount,
		m.OriginalJournalID,
		m.ReversingJournalID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal "+m.JournalID, err)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	// Running balances start from the balance before this journal and fold
	// in each line in deterministic order.
	currentRunningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, acc := range lockedAccounts {
		currentRunningBalances[accID] = acc.Balance
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionID < transactions[j].TransactionID
	})

	txnQuery := `
		INSERT INTO transactions (
			transaction_id, journal_id, account_id, amount, transaction_type, notes,
			created_at, created_by, last_updated_at, last_updated_by, running_balance
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, txn := range transactions {
		lockedAccount, ok := lockedAccounts[txn.AccountID]
		if !ok {
			return apperrors.NewAppError(500, "locked account "+txn.AccountID+" missing during transaction insert", nil)
		}
		signedAmount, err := accounting.CalculateSignedAmount(txn, lockedAccount.AccountType)
		if err != nil {
			return apperrors.NewAppError(500, "failed to calculate signed amount for transaction "+txn.TransactionID, err)
		}
		newRunningBalance := currentRunningBalances[txn.AccountID].Add(signedAmount)
		currentRunningBalances[txn.AccountID] = newRunningBalance

		batch.Queue(txnQuery,
			txn.TransactionID,
			txn.JournalID,
			txn.AccountID,
			txn.Amount,
			txn.TransactionType,
			txn.Notes,
			now,
			userID,
			now,
			userID,
			newRunningBalance,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute transaction batch for journal "+m.JournalID, err)
	}

	return r.Commit(ctx, tx)
}

const journalColumns = `journal_id, company_id, entry_number, journal_date, description, currency_code, status, amount, original_journal_id, reversing_journal_id, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	var originalID, reversingID sql.NullString
	err := row.Scan(
		&m.JournalID,
		&m.CompanyID,
		&m.EntryNumber,
		&m.JournalDate,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&m.Amount,
		&originalID,
		&reversingID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Journal{}, err
	}
	if originalID.Valid {
		m.OriginalJournalID = &originalID.String
	}
	if reversingID.Valid {
		m.ReversingJournalID = &reversingID.String
	}
	return m, nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`
	m, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by ID "+journalID, err)
	}
	j := toDomainJournal(m)
	return &j, nil
}

// ListJournalsByCompany returns a page of journals ordered newest first,
// with token-based pagination on (journal_date, created_at).
func (r *PgxJournalRepository) ListJournalsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journals`
	filterClause := `WHERE company_id = $1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND reversing_journal_id IS NULL AND original_journal_id IS NULL`
	}
	orderByClause := `ORDER BY journal_date DESC, created_at DESC`

	args := []any{companyID}
	query := baseQuery + " " + filterClause
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (journal_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journals for company "+companyID, err)
	}
	defer rows.Close()

	modelJournals := make([]models.Journal, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanJournal(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal row for company "+companyID, scanErr)
		}
		modelJournals = append(modelJournals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal rows for company "+companyID, err)
	}

	var nextTokenVal *string
	results := modelJournals
	if len(modelJournals) > limit {
		last := modelJournals[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &token
		results = modelJournals[:limit]
	}

	domainJournals := make([]domain.Journal, len(results))
	for i, m := range results {
		domainJournals[i] = toDomainJournal(m)
	}
	return domainJournals, nextTokenVal, nil
}

func (r *PgxJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, journal_id, account_id, amount, transaction_type, notes,
		       created_at, created_by, last_updated_at, last_updated_by, running_balance
		FROM transactions
		WHERE journal_id = $1
		ORDER BY transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for journal "+journalID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.JournalID,
			&m.AccountID,
			&m.Amount,
			&m.TransactionType,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.RunningBalance,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row for journal "+journalID, err)
		}
		transactions = append(transactions, toDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows for journal "+journalID, err)
	}
	return transactions, nil
}

// FindTransactionsByJournalIDs returns all transactions for the given
// journals, keyed by journal ID. Journals with no transactions get an empty
// slice so callers can range safely.
func (r *PgxJournalRepository) FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error) {
	if len(journalIDs) == 0 {
		return map[string][]domain.Transaction{}, nil
	}
	query := `
		SELECT transaction_id, journal_id, account_id, amount, transaction_type, notes,
		       created_at, created_by, last_updated_at, last_updated_by, running_balance
		FROM transactions
		WHERE journal_id = ANY($1)
		ORDER BY journal_id, transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for journal IDs", err)
	}
	defer rows.Close()

	transactionsMap := make(map[string][]domain.Transaction, len(journalIDs))
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.JournalID,
			&m.AccountID,
			&m.Amount,
			&m.TransactionType,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.RunningBalance,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row during batch fetch", err)
		}
		txn := toDomainTransaction(m)
		transactionsMap[txn.JournalID] = append(transactionsMap[txn.JournalID], txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows during batch fetch", err)
	}

	for _, jid := range journalIDs {
		if _, exists := transactionsMap[jid]; !exists {
			transactionsMap[jid] = []domain.Transaction{}
		}
	}
	return transactionsMap, nil
}

// ListTransactionsByAccountID returns a page of an account's ledger,
// excluding reversed and reversing journals so the statement reads as the
// net economic history.
func (r *PgxJournalRepository) ListTransactionsByAccountID(ctx context.Context, companyID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT t.transaction_id, t.journal_id, t.account_id, t.amount, t.transaction_type, t.notes,
		       t.created_at, t.created_by, t.last_updated_at, t.last_updated_by, t.running_balance,
		       j.journal_date, j.description
		FROM transactions t
		JOIN journals j ON t.journal_id = j.journal_id
		WHERE t.account_id = $1 AND j.company_id = $2 AND j.status = 'POSTED' AND j.original_journal_id IS NULL
	`
	orderByClause := `ORDER BY j.journal_date DESC, t.created_at DESC`

	args := []any{accountID, companyID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastJournalDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (j.journal_date, t.created_at) < ($3, $4)`
		args = append(args, lastJournalDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger for account "+accountID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.JournalID,
			&m.AccountID,
			&m.Amount,
			&m.TransactionType,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.RunningBalance,
			&m.JournalDate,
			&m.JournalDescription,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger row for account "+accountID, err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := modelTxns
	if len(modelTxns) > limit {
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &token
		results = modelTxns[:limit]
	}

	transactions := make([]domain.Transaction, len(results))
	for i, m := range results {
		transactions[i] = toDomainTransaction(m)
	}
	return transactions, nextTokenVal, nil
}

// UpdateJournalStatusAndLinks updates the status and reversal links for a
// journal. Used when a reversal flips the original to REVERSED and links the
// two journals together.
func (r *PgxJournalRepository) UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journals
		SET status = $2,
		    reversing_journal_id = $3,
		    original_journal_id = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE journal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		journalID,
		status,
		reversingJournalID,
		originalJournalID,
		updatedAt,
		updatedByUserID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal status/links for "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
