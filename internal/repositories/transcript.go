package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/sqlite"
)

type TranscriptRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewTranscriptRepository(dbs *sqlite.Database, logger *slog.Logger) *TranscriptRepository {
	return &TranscriptRepository{
		dbs:    dbs,
		logger: logger.With("source", "TranscriptRepository"),
	}
}

// RegisterCase records a case so that exchanges can reference it. Registering an existing case is a no-op.
func (r *TranscriptRepository) RegisterCase(ctx context.Context, caseID string, victim string) error {
	stmt := `INSERT INTO cases (id, victim) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, caseID, victim); err != nil {
		return errors.Wrap(err, "insert case", slog.String("case_id", caseID))
	}
	return nil
}

// Append adds an exchange to the end of the transcript of the exchange's case and suspect. The order is one past
// the last recorded exchange, starting from 0. The stored exchange is returned.
func (r *TranscriptRepository) Append(ctx context.Context, exchange models.Exchange) (models.Exchange, error) {
	stmt := `INSERT INTO exchanges (case_id, suspect_id, "order", question, answer, outcome)
SELECT @case_id,
       @suspect_id,
       COALESCE(MAX("order") + 1, 0),
       @question,
       @answer,
       @outcome
FROM exchanges
WHERE case_id = @case_id
  AND suspect_id = @suspect_id
RETURNING id, "order"`
	params := []any{
		sql.Named("case_id", exchange.CaseID),
		sql.Named("suspect_id", exchange.SuspectID),
		sql.Named("question", exchange.Question),
		sql.Named("answer", exchange.Answer),
		sql.Named("outcome", exchange.Outcome),
	}
	if err := r.dbs.ReadWrite.QueryRowContext(ctx, stmt, params...).Scan(&exchange.ID, &exchange.Order); err != nil {
		return exchange, errors.Wrap(err, "insert exchange",
			slog.String("case_id", exchange.CaseID), slog.Int("suspect_id", exchange.SuspectID))
	}
	return exchange, nil
}

// List returns the transcript of a suspect in a case in order. An unknown case has an empty transcript.
func (r *TranscriptRepository) List(ctx context.Context, caseID string, suspectID int) ([]models.Exchange, error) {
	exchanges := []models.Exchange{}
	stmt := `SELECT id, case_id, suspect_id, "order", question, answer, outcome
FROM exchanges
WHERE case_id = ?
  AND suspect_id = ?
ORDER BY "order"`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &exchanges, stmt, caseID, suspectID); err != nil {
		return nil, errors.Wrap(err, "select exchanges",
			slog.String("case_id", caseID), slog.Int("suspect_id", suspectID))
	}
	return exchanges, nil
}
