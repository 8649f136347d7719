// Package repository persists CV cases in Postgres. Candidate records and
// registration forms are stored as JSONB documents on the case row.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	"github.com/ehstaff/ehstaff-backend/pkg/database"
	"github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// caseRow is the wire shape of a cv_cases row. JSONB columns come back as
// raw bytes and are decoded into domain types on read.
type caseRow struct {
	ID               string          `db:"id"`
	UserID           string          `db:"user_id"`
	OriginalFileName string          `db:"original_file_name"`
	OriginalFileURL  string          `db:"original_file_url"`
	Candidate        json.RawMessage `db:"candidate"`
	RegistrationForm json.RawMessage `db:"registration_form"`
	Status           string          `db:"status"`
	ApprovedAt       *time.Time      `db:"approved_at"`
	ApprovedBy       *string         `db:"approved_by"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *caseRow) toDomain() (*domain.Case, error) {
	c := &domain.Case{
		ID:               r.ID,
		UserID:           r.UserID,
		OriginalFileName: r.OriginalFileName,
		OriginalFileURL:  r.OriginalFileURL,
		Status:           domain.Status(r.Status),
		ApprovedAt:       r.ApprovedAt,
		ApprovedBy:       r.ApprovedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if len(r.Candidate) > 0 && string(r.Candidate) != "null" {
		c.Candidate = &domain.CandidateRecord{}
		if err := json.Unmarshal(r.Candidate, c.Candidate); err != nil {
			return nil, fmt.Errorf("decode candidate record: %w", err)
		}
	}
	if len(r.RegistrationForm) > 0 && string(r.RegistrationForm) != "null" {
		c.RegistrationForm = &domain.RegistrationForm{}
		if err := json.Unmarshal(r.RegistrationForm, c.RegistrationForm); err != nil {
			return nil, fmt.Errorf("decode registration form: %w", err)
		}
	}
	return c, nil
}

// CVRepository handles CV case persistence
type CVRepository struct {
	db *database.DB
}

// NewCVRepository creates a new CV case repository
func NewCVRepository(db *database.DB) *CVRepository {
	return &CVRepository{db: db}
}

const caseColumns = `id, user_id, original_file_name, original_file_url,
       candidate, registration_form, status, approved_at, approved_by,
       created_at, updated_at`

// Create inserts a new case in uploaded status.
func (r *CVRepository) Create(ctx context.Context, c *domain.Case) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.StatusUploaded
	}

	query := `
		INSERT INTO cv_cases (
			id, user_id, original_file_name, original_file_url, status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		c.ID, c.UserID, c.OriginalFileName, c.OriginalFileURL, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	return nil
}

// GetByID returns a case by ID.
func (r *CVRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	var row caseRow
	query := `SELECT ` + caseColumns + ` FROM cv_cases WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("cv case")
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListByUser lists a user's cases with pagination, newest first.
func (r *CVRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]*domain.Case, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM cv_cases WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	var rows []caseRow
	offset := (page - 1) * perPage
	query := `
		SELECT ` + caseColumns + `
		FROM cv_cases
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, perPage, offset); err != nil {
		return nil, 0, err
	}

	cases := make([]*domain.Case, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		cases = append(cases, c)
	}
	return cases, total, nil
}

// UpdateStatus moves a case from an expected status to a new one. The
// guard makes the transition atomic: a row is only updated when it is
// still in the expected state.
func (r *CVRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	if !domain.CanTransition(from, to) {
		return errors.BadRequest(fmt.Sprintf("cannot transition from %s to %s", from, to))
	}

	query := `
		UPDATE cv_cases
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	if affected == 0 {
		return errors.NotFound("cv case in expected status")
	}
	return nil
}

// UpdateCandidate stores a candidate record and moves the case to
// processed. Used both by the processing pipeline and manual review edits.
func (r *CVRepository) UpdateCandidate(ctx context.Context, id string, candidate *domain.CandidateRecord) error {
	payload, err := json.Marshal(candidate)
	if err != nil {
		return errors.PersistenceFailed(err)
	}

	query := `
		UPDATE cv_cases
		SET candidate = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status IN ($4, $5)
	`
	result, err := r.db.ExecContext(ctx, query,
		payload, domain.StatusProcessed, id, domain.StatusProcessing, domain.StatusProcessed)
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	if affected == 0 {
		return errors.NotFound("cv case in editable status")
	}
	return nil
}

// UpdateRegistrationForm stores a registration form on a case. Forms do
// not participate in the processing state machine.
func (r *CVRepository) UpdateRegistrationForm(ctx context.Context, id string, form *domain.RegistrationForm) error {
	payload, err := json.Marshal(form)
	if err != nil {
		return errors.PersistenceFailed(err)
	}

	query := `
		UPDATE cv_cases
		SET registration_form = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, payload, id)
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	if affected == 0 {
		return errors.NotFound("cv case")
	}
	return nil
}

// Approve finalizes a processed case, stamping approver and time.
func (r *CVRepository) Approve(ctx context.Context, id, approvedBy string) (*domain.Case, error) {
	query := `
		UPDATE cv_cases
		SET status = $1, approved_at = NOW(), approved_by = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		domain.StatusApproved, approvedBy, id, domain.StatusProcessed)
	if err != nil {
		return nil, errors.PersistenceFailed(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.PersistenceFailed(err)
	}
	if affected == 0 {
		return nil, errors.BadRequest("only processed cases can be approved")
	}
	return r.GetByID(ctx, id)
}

// Delete removes a case row.
func (r *CVRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cv_cases WHERE id = $1`, id)
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	if affected == 0 {
		return errors.NotFound("cv case")
	}
	return nil
}
