package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maturitymap/internal/model"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// created_at is stored fixed-width so text ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteAssessmentRepo is a file backed AssessmentRepo for the terminal runner
type SQLiteAssessmentRepo struct {
	db *sql.DB
}

// NewSQLiteAssessmentRepo opens (creating if needed) the history database at path
func NewSQLiteAssessmentRepo(path string) (*SQLiteAssessmentRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	createSQL := `CREATE TABLE IF NOT EXISTS assessments (
		id            TEXT PRIMARY KEY,
		client_id     TEXT NOT NULL,
		email         TEXT NOT NULL,
		organization  TEXT NOT NULL,
		org_type      TEXT NOT NULL,
		answers       TEXT NOT NULL DEFAULT '{}',
		result        TEXT NOT NULL,
		overall_score INTEGER NOT NULL,
		created_at    TEXT NOT NULL
	)`
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_assessments_email ON assessments (email, created_at)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteAssessmentRepo{db: db}, nil
}

// Close closes the underlying database
func (r *SQLiteAssessmentRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteAssessmentRepo) Save(ctx context.Context, record *model.AssessmentRecord) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	answers, err := json.Marshal(record.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO assessments
		 (id, client_id, email, organization, org_type, answers, result, overall_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ClientID, record.Organization.Email, record.Organization.Organization,
		string(record.Organization.OrgType), string(answers), string(result),
		record.Result.OverallScore, record.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	return err
}

func (r *SQLiteAssessmentRepo) ListByEmail(ctx context.Context, email string, limit int) ([]model.AssessmentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, email, organization, org_type, answers, result, created_at
		 FROM assessments WHERE email = ? ORDER BY created_at DESC LIMIT ?`,
		email, historyLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.AssessmentRecord{}
	for rows.Next() {
		var (
			rec                   model.AssessmentRecord
			orgType, answers, res string
			createdAt             string
		)
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Organization.Email, &rec.Organization.Organization,
			&orgType, &answers, &res, &createdAt); err != nil {
			return nil, err
		}
		rec.Organization.OrgType = model.OrganizationType(orgType)
		if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(res), &rec.Result); err != nil {
			return nil, fmt.Errorf("decode result for %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("decode created_at for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
