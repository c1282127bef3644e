package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
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
	"github.com/makznkaljaafari/makhzan_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for business documents.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

func toModelDocumentLines(lines []domain.DocumentLine) []models.DocumentLine {
	out := make([]models.DocumentLine, len(lines))
	for i, l := range lines {
		out[i] = models.DocumentLine{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return out
}

func toDomainDocumentLines(lines []models.DocumentLine) []domain.DocumentLine {
	out := make([]domain.DocumentLine, len(lines))
	for i, l := range lines {
		out[i] = domain.DocumentLine{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return out
}

func toDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		DocumentID:         m.DocumentID,
		CompanyID:          m.CompanyID,
		Kind:               domain.DocumentKind(m.Kind),
		PartyID:            m.PartyID,
		PartyName:          m.PartyName,
		DocumentDate:       m.DocumentDate,
		CurrencyCode:       m.CurrencyCode,
		ExchangeRate:       m.ExchangeRate,
		Lines:              toDomainDocumentLines(m.Lines),
		Total:              m.Total,
		PaidAmount:         m.PaidAmount,
		IsCredit:           m.IsCredit,
		Status:             domain.DocumentStatus(m.Status),
		IsPosted:           m.IsPosted,
		JournalID:          m.JournalID,
		OriginalDocumentID: m.OriginalDocumentID,
		Notes:              m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const documentColumns = `document_id, company_id, kind, party_id, party_name, document_date, currency_code, exchange_rate, lines, total, paid_amount, is_credit, status, is_posted, journal_id, original_document_id, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanDocument(row pgx.Row) (models.Document, error) {
	var m models.Document
	var linesJSON []byte
	var journalID, originalDocumentID sql.NullString
	err := row.Scan(
		&m.DocumentID,
		&m.CompanyID,
		&m.Kind,
		&m.PartyID,
		&m.PartyName,
		&m.DocumentDate,
		&m.CurrencyCode,
		&m.ExchangeRate,
		&linesJSON,
		&m.Total,
		&m.PaidAmount,
		&m.IsCredit,
		&m.Status,
		&m.IsPosted,
		&journalID,
		&originalDocumentID,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Document{}, err
	}
	if err := json.Unmarshal(linesJSON, &m.Lines); err != nil {
		return models.Document{}, err
	}
	if journalID.Valid {
		m.JournalID = &journalID.String
	}
	if originalDocumentID.Valid {
		m.OriginalDocumentID = &originalDocumentID.String
	}
	return m, nil
}

// SaveDocument inserts a new document with its lines serialized as JSONB.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document) error {
	linesJSON, err := json.Marshal(toModelDocumentLines(doc.Lines))
	if err != nil {
		return apperrors.NewAppError(500, "failed to serialize document lines for "+doc.DocumentID, err)
	}
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err = r.Pool.Exec(ctx, query,
		doc.DocumentID,
		doc.CompanyID,
		doc.Kind,
		doc.PartyID,
		doc.PartyName,
		doc.DocumentDate,
		doc.CurrencyCode,
		doc.ExchangeRate,
		linesJSON,
		doc.Total,
		doc.PaidAmount,
		doc.IsCredit,
		doc.Status,
		doc.IsPosted,
		doc.JournalID,
		doc.OriginalDocumentID,
		doc.Notes,
		doc.CreatedAt,
		doc.CreatedBy,
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save document "+doc.DocumentID, err)
	}
	return nil
}

func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1;`
	m, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find document by ID "+documentID, err)
	}
	doc := toDomainDocument(m)
	return &doc, nil
}

// ListDocumentsByCompany returns a page of documents newest first, optionally
// filtered by kind, with token-based pagination on (document_date, created_at).
func (r *PgxDocumentRepository) ListDocumentsByCompany(ctx context.Context, companyID string, kind *domain.DocumentKind, limit int, nextToken *string) ([]domain.Document, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1`
	args := []any{companyID}
	if kind != nil {
		args = append(args, *kind)
		query += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (document_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY document_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query documents for company "+companyID, err)
	}
	defer rows.Close()

	modelDocs := make([]models.Document, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan document row for company "+companyID, scanErr)
		}
		modelDocs = append(modelDocs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating document rows for company "+companyID, err)
	}

	var nextTokenVal *string
	results := modelDocs
	if len(modelDocs) > limit {
		last := modelDocs[limit-1]
		token := pagination.EncodeToken(last.DocumentDate, last.CreatedAt)
		nextTokenVal = &token
		results = modelDocs[:limit]
	}

	docs := make([]domain.Document, len(results))
	for i, m := range results {
		docs[i] = toDomainDocument(m)
	}
	return docs, nextTokenVal, nil
}

// FindOutstandingByParty returns the party's not fully paid documents of the
// given kinds, oldest first. Posting state is not a criterion: payments can
// be applied before or after a document is posted, matching manual
// allocation. The ordering is what makes FIFO auto-application deterministic.
func (r *PgxDocumentRepository) FindOutstandingByParty(ctx context.Context, companyID, partyID string, kinds []domain.DocumentKind) ([]domain.Document, error) {
	kindStrings := make([]string, len(kinds))
	for i, k := range kinds {
		kindStrings[i] = string(k)
	}
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND party_id = $2 AND kind = ANY($3)
		  AND paid_amount < total
		ORDER BY document_date ASC, created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, partyID, kindStrings)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query outstanding documents for party "+partyID, err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		m, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan outstanding document row for party "+partyID, scanErr)
		}
		docs = append(docs, toDomainDocument(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating outstanding document rows for party "+partyID, err)
	}
	return docs, nil
}

// MarkReceived flips a purchase order to RECEIVED. Only OPEN documents
// qualify; anything else reports ErrNotFound for the caller to disambiguate.
func (r *PgxDocumentRepository) MarkReceived(ctx context.Context, documentID string, userID string, now time.Time) error {
	query := `
		UPDATE documents
		SET status = 'RECEIVED',
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE document_id = $1 AND status = 'OPEN';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, documentID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark document received "+documentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkPosted stamps the journal link on a document. The is_posted guard makes
// double posting impossible at the storage level even if two requests race
// past the service check.
func (r *PgxDocumentRepository) MarkPosted(ctx context.Context, documentID string, journalID string, userID string, now time.Time) error {
	query := `
		UPDATE documents
		SET is_posted = TRUE,
		    journal_id = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE document_id = $1 AND is_posted = FALSE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, documentID, journalID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark document posted "+documentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyPosted
	}
	return nil
}

// AddPaidAmount increments the document's paid amount in its own transaction
// currency. The amount only ever grows.
func (r *PgxDocumentRepository) AddPaidAmount(ctx context.Context, documentID string, delta decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE documents
		SET paid_amount = paid_amount + $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE document_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, documentID, delta, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add paid amount on document "+documentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
