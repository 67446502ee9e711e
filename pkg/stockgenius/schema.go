package stockgenius

import "database/sql"

func initJournal(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS advice_history (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('recommendation', 'simulation', 'report')),
			provider TEXT NOT NULL,
			model TEXT,
			risk_tier TEXT,
			duration TEXT,
			strategy TEXT,
			amount REAL,
			period_months INTEGER,
			content TEXT,
			error_message TEXT,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_advice_history_created ON advice_history(created_at DESC)"); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_advice_history_kind ON advice_history(kind, created_at DESC)"); err != nil {
		return err
	}
	return tx.Commit()
}

func exec(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}
