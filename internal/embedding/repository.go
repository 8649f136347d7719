package embedding

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/ehstaff/ehstaff-backend/pkg/database"
	"github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// Match is a similarity search hit.
type Match struct {
	CaseID   string  `db:"case_id" json:"case_id"`
	UserID   string  `db:"user_id" json:"user_id"`
	Distance float64 `db:"distance" json:"distance"`
}

// Repository stores candidate vectors in the cv_embeddings table using
// the pgvector extension.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new embedding repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes or replaces the vector for a case.
func (r *Repository) Upsert(ctx context.Context, caseID, userID string, vector []float32) error {
	query := `
		INSERT INTO cv_embeddings (case_id, user_id, embedding, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (case_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, caseID, userID, pgvector.NewVector(vector)); err != nil {
		return errors.PersistenceFailed(err)
	}
	return nil
}

// FindSimilar returns the topK nearest cases by cosine distance.
func (r *Repository) FindSimilar(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK < 1 {
		topK = 5
	}
	var matches []Match
	query := `
		SELECT case_id, user_id, embedding <=> $1 AS distance
		FROM cv_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &matches, query, pgvector.NewVector(vector), topK)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return matches, nil
}

// Delete removes the vector for a case.
func (r *Repository) Delete(ctx context.Context, caseID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cv_embeddings WHERE case_id = $1`, caseID); err != nil {
		return errors.PersistenceFailed(err)
	}
	return nil
}
