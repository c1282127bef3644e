package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	"github.com/makznkaljaafari/makhzan_ledger/internal/models"
	"github.com/shopspring/decimal"
)

type PgxPartyRepository struct {
	BaseRepository
}

// newPgxPartyRepository creates a new repository for customers, suppliers
// and their payment history.
func newPgxPartyRepository(pool *pgxpool.Pool) portsrepo.PartyRepositoryFacade {
	return &PgxPartyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PartyRepositoryFacade = (*PgxPartyRepository)(nil)

func toDomainParty(m models.Party) domain.Party {
	return domain.Party{
		PartyID:   m.PartyID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Kind:      domain.PartyKind(m.Kind),
		Phone:     m.Phone,
		Notes:     m.Notes,
		TotalDebt: m.TotalDebt,
		IsActive:  m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const partyColumns = `party_id, company_id, name, kind, phone, notes, total_debt, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanParty(row pgx.Row) (models.Party, error) {
	var m models.Party
	var phone, notes sql.NullString
	err := row.Scan(
		&m.PartyID,
		&m.CompanyID,
		&m.Name,
		&m.Kind,
		&phone,
		&notes,
		&m.TotalDebt,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Party{}, err
	}
	if phone.Valid {
		m.Phone = phone.String
	}
	if notes.Valid {
		m.Notes = notes.String
	}
	return m, nil
}

func (r *PgxPartyRepository) SaveParty(ctx context.Context, party domain.Party) error {
	query := `
		INSERT INTO parties (` + partyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		party.PartyID,
		party.CompanyID,
		party.Name,
		party.Kind,
		party.Phone,
		party.Notes,
		party.TotalDebt,
		party.IsActive,
		party.CreatedAt,
		party.CreatedBy,
		party.LastUpdatedAt,
		party.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save party "+party.PartyID, err)
	}
	return nil
}

func (r *PgxPartyRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE party_id = $1;`
	m, err := scanParty(r.Pool.QueryRow(ctx, query, partyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find party by ID "+partyID, err)
	}
	p := toDomainParty(m)
	return &p, nil
}

func (r *PgxPartyRepository) ListParties(ctx context.Context, companyID string, kind *domain.PartyKind, limit int, offset int) ([]domain.Party, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + partyColumns + ` FROM parties WHERE company_id = $1 AND is_active = TRUE`
	args := []any{companyID}
	if kind != nil {
		args = append(args, *kind)
		query += ` AND kind = $` + strconv.Itoa(len(args))
	}
	args = append(args, limit, offset)
	query += ` ORDER BY name LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list parties for company "+companyID, err)
	}
	defer rows.Close()

	parties := make([]domain.Party, 0, limit)
	for rows.Next() {
		m, scanErr := scanParty(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan party row", scanErr)
		}
		parties = append(parties, toDomainParty(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating party rows", err)
	}
	return parties, nil
}

func (r *PgxPartyRepository) UpdateParty(ctx context.Context, party domain.Party) error {
	query := `
		UPDATE parties
		SET name = $2,
		    phone = $3,
		    notes = $4,
		    is_active = $5,
		    last_updated_at = $6,
		    last_updated_by = $7
		WHERE party_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		party.PartyID,
		party.Name,
		party.Phone,
		party.Notes,
		party.IsActive,
		party.LastUpdatedAt,
		party.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update party "+party.PartyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AdjustTotalDebt applies a signed base-currency delta to the party's
// aggregate outstanding balance.
func (r *PgxPartyRepository) AdjustTotalDebt(ctx context.Context, partyID string, delta decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE parties
		SET total_debt = total_debt + $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE party_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, partyID, delta, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to adjust total debt for party "+partyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SavePaymentRecord appends one row to the party's payment history. Rows are
// never updated or deleted.
func (r *PgxPartyRepository) SavePaymentRecord(ctx context.Context, record domain.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (
			record_id, company_id, party_id, record_date, amount, record_type,
			ref_id, method, currency_code, exchange_rate, notes, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		record.RecordID,
		record.CompanyID,
		record.PartyID,
		record.Date,
		record.Amount,
		record.Type,
		record.RefID,
		record.Method,
		record.CurrencyCode,
		record.ExchangeRate,
		record.Notes,
		record.CreatedAt,
		record.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save payment record "+record.RecordID, err)
	}
	return nil
}

// ListPaymentRecords returns a page of the party's history, newest first.
func (r *PgxPartyRepository) ListPaymentRecords(ctx context.Context, companyID, partyID string, limit int, offset int) ([]domain.PaymentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT record_id, company_id, party_id, record_date, amount, record_type,
		       ref_id, method, currency_code, exchange_rate, notes, created_at, created_by
		FROM payment_records
		WHERE company_id = $1 AND party_id = $2
		ORDER BY record_date DESC, created_at DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, partyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payment records for party "+partyID, err)
	}
	defer rows.Close()

	records := make([]domain.PaymentRecord, 0, limit)
	for rows.Next() {
		var m models.PaymentRecord
		var refID, method, notes sql.NullString
		if err := rows.Scan(
			&m.RecordID,
			&m.CompanyID,
			&m.PartyID,
			&m.RecordDate,
			&m.Amount,
			&m.RecordType,
			&refID,
			&method,
			&m.CurrencyCode,
			&m.ExchangeRate,
			&notes,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment record row", err)
		}
		records = append(records, domain.PaymentRecord{
			RecordID:     m.RecordID,
			CompanyID:    m.CompanyID,
			PartyID:      m.PartyID,
			Date:         m.RecordDate,
			Amount:       m.Amount,
			Type:         domain.PaymentRecordType(m.RecordType),
			RefID:        refID.String,
			Method:       method.String,
			CurrencyCode: m.CurrencyCode,
			ExchangeRate: m.ExchangeRate,
			Notes:        notes.String,
			CreatedAt:    m.CreatedAt,
			CreatedBy:    m.CreatedBy,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment record rows", err)
	}
	return records, nil
}
