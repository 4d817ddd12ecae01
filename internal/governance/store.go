// Package governance persists decision records, the human-review
// queue, and versioned runtime configuration overrides. The
// orchestrator consumes it as its config resolver; the API and CLI
// consume it for the review workflow and trust metrics.
package governance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// ErrNoPendingReview reports that a review id does not name a review
// in pending status. Callers use it to tell a bad request apart from
// a storage failure.
var ErrNoPendingReview = errors.New("no pending review")

const schema = `
CREATE TABLE IF NOT EXISTS decision_records (
	id              TEXT PRIMARY KEY,
	transcript      TEXT NOT NULL,
	action          TEXT NOT NULL,
	confidence      REAL NOT NULL,
	requires_review INTEGER NOT NULL,
	risk_tier       TEXT NOT NULL,
	fallback_used   INTEGER NOT NULL,
	result_json     TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS review_requests (
	id              TEXT PRIMARY KEY,
	transcript      TEXT NOT NULL,
	status          TEXT NOT NULL,
	result_json     TEXT NOT NULL,
	system_action   TEXT NOT NULL,
	human_action    TEXT,
	human_rationale TEXT,
	created_at      TIMESTAMP NOT NULL,
	reviewed_at     TIMESTAMP
);

CREATE TABLE IF NOT EXISTS config_versions (
	id              TEXT PRIMARY KEY,
	active          INTEGER NOT NULL,
	thresholds_json TEXT NOT NULL,
	prompts_json    TEXT NOT NULL,
	rationale       TEXT,
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_created ON decision_records(created_at);
CREATE INDEX IF NOT EXISTS idx_reviews_status ON review_requests(status);
`

// Store is the sqlite-backed governance store
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the governance database
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDecision persists one analysis result and returns the record ID
func (s *Store) SaveDecision(ctx context.Context, transcript string, result *model.AnalysisResult) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decision_records
			(id, transcript, action, confidence, requires_review, risk_tier, fallback_used, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, transcript,
		string(result.Decision.Action),
		result.Decision.Confidence,
		boolInt(result.Decision.RequiresHumanReview),
		string(result.RiskAssessment.Tier),
		boolInt(anyFallbackUsed(result.AgentExecutions)),
		string(resultJSON),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert decision: %w", err)
	}
	return id, nil
}

// CreateReview enqueues a human-review request for an escalated result
func (s *Store) CreateReview(ctx context.Context, transcript string, result *model.AnalysisResult) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_requests (id, transcript, status, result_json, system_action, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, transcript, model.ReviewPending, string(resultJSON),
		string(result.Decision.Action), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert review: %w", err)
	}
	return id, nil
}

// ListReviews returns review requests, optionally filtered by status
func (s *Store) ListReviews(ctx context.Context, status string, limit int) ([]model.ReviewRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, transcript, status, result_json, human_action, human_rationale, created_at, reviewed_at
		FROM review_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []model.ReviewRequest
	for rows.Next() {
		var r model.ReviewRequest
		var resultJSON string
		var humanAction, humanRationale sql.NullString
		var reviewedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Transcript, &r.Status, &resultJSON, &humanAction, &humanRationale, &r.CreatedAt, &reviewedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		var result model.AnalysisResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err == nil {
			r.Result = &result
		}
		if humanAction.Valid {
			r.HumanAction = model.DecisionAction(humanAction.String)
		}
		if humanRationale.Valid {
			r.HumanRationale = humanRationale.String
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			r.ReviewedAt = &t
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// SubmitReview records a human decision on a pending review
func (s *Store) SubmitReview(ctx context.Context, id string, action model.DecisionAction, rationale string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE review_requests
		SET status = ?, human_action = ?, human_rationale = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`,
		model.ReviewReviewed, string(action), rationale, time.Now().UTC(), id, model.ReviewPending,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w with id %s", ErrNoPendingReview, id)
	}
	return nil
}

// SaveConfigVersion stores a new configuration version. When activate
// is true it becomes the single active version.
func (s *Store) SaveConfigVersion(ctx context.Context, thresholds map[string]float64, prompts map[string]string, rationale string, activate bool) (string, error) {
	thresholdsJSON, err := json.Marshal(thresholds)
	if err != nil {
		return "", fmt.Errorf("marshal thresholds: %w", err)
	}
	promptsJSON, err := json.Marshal(prompts)
	if err != nil {
		return "", fmt.Errorf("marshal prompts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if activate {
		if _, err := tx.ExecContext(ctx, `UPDATE config_versions SET active = 0`); err != nil {
			return "", fmt.Errorf("deactivate versions: %w", err)
		}
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO config_versions (id, active, thresholds_json, prompts_json, rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, boolInt(activate), string(thresholdsJSON), string(promptsJSON), rationale, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert config version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// activeOverrides loads the active config version, if any
func (s *Store) activeOverrides() (map[string]float64, map[string]string) {
	var thresholdsJSON, promptsJSON string
	err := s.db.QueryRow(`
		SELECT thresholds_json, prompts_json FROM config_versions
		WHERE active = 1 ORDER BY created_at DESC LIMIT 1`).Scan(&thresholdsJSON, &promptsJSON)
	if err != nil {
		return nil, nil
	}

	var thresholds map[string]float64
	var prompts map[string]string
	_ = json.Unmarshal([]byte(thresholdsJSON), &thresholds)
	_ = json.Unmarshal([]byte(promptsJSON), &prompts)
	return thresholds, prompts
}

// ActiveThresholds implements the orchestrator's config resolver:
// active overrides layered on the configured base
func (s *Store) ActiveThresholds(base model.Thresholds) model.Thresholds {
	overrides, _ := s.activeOverrides()
	if len(overrides) == 0 {
		return base
	}
	return base.Merge(overrides)
}

// ActivePrompts returns the active prompt overrides
func (s *Store) ActivePrompts() map[string]string {
	_, prompts := s.activeOverrides()
	return prompts
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func anyFallbackUsed(executions []model.AgentExecutionDetail) bool {
	for _, e := range executions {
		if e.FallbackUsed {
			return true
		}
	}
	return false
}
