package stockgenius

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AdviceKind names the advisor prompt that produced a journal entry.
type AdviceKind string

const (
	AdviceRecommendation AdviceKind = "recommendation"
	AdviceSimulation     AdviceKind = "simulation"
	AdviceReport         AdviceKind = "report"
)

// Valid reports whether k is a known advice kind.
func (k AdviceKind) Valid() bool {
	switch k {
	case AdviceRecommendation, AdviceSimulation, AdviceReport:
		return true
	}
	return false
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200

	// Fixed-width so that created_at sorts lexicographically.
	journalTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// AdviceRecord is one journaled advisor run.
type AdviceRecord struct {
	ID           string     `json:"id"`
	Kind         AdviceKind `json:"kind"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model,omitempty"`
	RiskTier     string     `json:"risk_tier,omitempty"`
	Duration     string     `json:"duration,omitempty"`
	Strategy     string     `json:"strategy,omitempty"`
	Amount       *Amount    `json:"amount,omitempty"`
	PeriodMonths *int       `json:"period_months,omitempty"`
	Content      string     `json:"content,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RecordAdvice stores an advisor run and returns it with its id and timestamp filled in.
func (c *Core) RecordAdvice(ctx context.Context, record AdviceRecord) (*AdviceRecord, error) {
	if c.db == nil {
		return nil, NewError(ErrCodeDatabase, "advice journal is disabled")
	}
	if !record.Kind.Valid() {
		return nil, invalidInputf("invalid advice kind: %s", record.Kind)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = c.clock().UTC()
	}

	var amount, period any
	if record.Amount != nil {
		amount = *record.Amount
	}
	if record.PeriodMonths != nil {
		period = *record.PeriodMonths
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO advice_history (id, kind, provider, model, risk_tier, duration, strategy, amount, period_months, content, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, string(record.Kind), record.Provider, nullableString(record.Model), nullableString(record.RiskTier),
		nullableString(record.Duration), nullableString(record.Strategy), amount, period,
		nullableString(record.Content), nullableString(record.ErrorMessage), record.CreatedAt.Format(journalTimeLayout))
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "record advice", err)
	}
	return &record, nil
}

// ListAdviceHistory returns journaled runs, newest first. An empty kind lists every kind;
// limit defaults to 20 and is capped at 200.
func (c *Core) ListAdviceHistory(ctx context.Context, kind AdviceKind, limit int) ([]AdviceRecord, error) {
	if c.db == nil {
		return nil, NewError(ErrCodeDatabase, "advice journal is disabled")
	}
	if kind != "" && !kind.Valid() {
		return nil, invalidInputf("invalid advice kind: %s", kind)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	query := `SELECT id, kind, provider, model, risk_tier, duration, strategy, amount, period_months, content, error_message, created_at
		FROM advice_history`
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "list advice history", err)
	}
	defer rows.Close()

	records := []AdviceRecord{}
	for rows.Next() {
		var (
			r                                                    AdviceRecord
			kindStr                                              string
			model, tier, duration, strategy, content, errMessage sql.NullString
			amount                                               sql.NullFloat64
			period                                               sql.NullInt64
			createdAt                                            string
		)
		if err := rows.Scan(&r.ID, &kindStr, &r.Provider, &model, &tier, &duration, &strategy, &amount, &period, &content, &errMessage, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan advice history", err)
		}
		r.Kind = AdviceKind(kindStr)
		r.Model = model.String
		r.RiskTier = tier.String
		r.Duration = duration.String
		r.Strategy = strategy.String
		r.Content = content.String
		r.ErrorMessage = errMessage.String
		if amount.Valid {
			a := NewAmount(amount.Float64)
			r.Amount = &a
		}
		if period.Valid {
			p := int(period.Int64)
			r.PeriodMonths = &p
		}
		if t, err := time.Parse(journalTimeLayout, createdAt); err == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate advice history", err)
	}
	return records, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
