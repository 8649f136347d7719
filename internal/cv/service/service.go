// Package service orchestrates the CV intake pipeline: upload, text
// extraction, AI structuring with heuristic fallback, house formatting,
// review edits, approval and deletion.
package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ehstaff/ehstaff-backend/internal/cv/aiagent"
	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	"github.com/ehstaff/ehstaff-backend/internal/cv/events"
	"github.com/ehstaff/ehstaff-backend/internal/cv/extract"
	"github.com/ehstaff/ehstaff-backend/internal/cv/formatting"
	"github.com/ehstaff/ehstaff-backend/internal/cv/parser"
	"github.com/ehstaff/ehstaff-backend/pkg/errors"
	"github.com/ehstaff/ehstaff-backend/pkg/logger"
)

// Repository is the persistence boundary for CV cases.
type Repository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]*domain.Case, int64, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) error
	UpdateCandidate(ctx context.Context, id string, candidate *domain.CandidateRecord) error
	UpdateRegistrationForm(ctx context.Context, id string, form *domain.RegistrationForm) error
	Approve(ctx context.Context, id, approvedBy string) (*domain.Case, error)
	Delete(ctx context.Context, id string) error
}

// Agent is the remote structuring capability. Unavailability is an
// expected condition, not an error: the pipeline falls back to the
// heuristic parser.
type Agent interface {
	Available() bool
	ConvertToStructuredData(ctx context.Context, text string) (*aiagent.ParseResult, error)
	CompareAndAdjustContent(ctx context.Context, cv *domain.CandidateRecord, intake map[string]any) (*aiagent.CompareResult, error)
	ApplyFormattingStandards(ctx context.Context, cv *domain.CandidateRecord, template map[string]any) (*aiagent.FormatResult, error)
}

// Embedder stores a searchable vector for an approved candidate.
type Embedder interface {
	UpsertForCase(ctx context.Context, caseID, userID, text string) error
}

// CVService coordinates the upload-to-approval lifecycle of a CV case.
type CVService struct {
	repo        Repository
	store       extract.Store
	agent       Agent
	embedder    Embedder
	publisher   *events.CasePublisher
	pool        *Pool
	maxFileSize int64
	validate    *validator.Validate
	logger      *logger.Logger
}

// NewCVService creates the pipeline orchestrator.
func NewCVService(
	repo Repository,
	store extract.Store,
	agent Agent,
	embedder Embedder,
	publisher *events.CasePublisher,
	pool *Pool,
	maxFileSize int64,
	log *logger.Logger,
) *CVService {
	if maxFileSize <= 0 {
		maxFileSize = extract.DefaultMaxFileSize
	}
	return &CVService{
		repo:        repo,
		store:       store,
		agent:       agent,
		embedder:    embedder,
		publisher:   publisher,
		pool:        pool,
		maxFileSize: maxFileSize,
		validate:    validator.New(),
		logger:      log,
	}
}

// Create validates and stores an upload, creates the case and queues
// background processing. Extraction failures surface here; no case is
// created for a file we cannot read.
func (s *CVService) Create(ctx context.Context, userID, fileName, mimeType string, data []byte) (*domain.Case, error) {
	if err := extract.Validate(mimeType, int64(len(data)), s.maxFileSize); err != nil {
		return nil, err
	}

	text, err := extract.Text(data, mimeType)
	if err != nil {
		return nil, errors.ExtractionFailed(err)
	}

	url, err := s.store.Put(data, fileName)
	if err != nil {
		return nil, errors.PersistenceFailed(err)
	}

	c := &domain.Case{
		UserID:           userID,
		OriginalFileName: fileName,
		OriginalFileURL:  url,
		Status:           domain.StatusUploaded,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.publisher.Uploaded(ctx, c)

	caseID, caseUserID := c.ID, c.UserID
	queued := s.pool.Submit(func(jobCtx context.Context) {
		s.process(jobCtx, caseID, caseUserID, text)
	})
	if !queued {
		// Pool saturated or shutting down; process inline rather than
		// leave the case stranded in uploaded.
		go s.process(context.Background(), caseID, caseUserID, text)
	}

	return c, nil
}

// process runs the structuring pipeline for one case. Any terminal
// failure moves the case to rejected; the error is logged, not returned.
func (s *CVService) process(ctx context.Context, caseID, userID, text string) {
	log := s.logger.WithCaseID(caseID)

	if err := s.repo.UpdateStatus(ctx, caseID, domain.StatusUploaded, domain.StatusProcessing); err != nil {
		log.Error().Err(err).Msg("failed to mark case processing")
		return
	}

	candidate := s.structure(ctx, log, text)
	candidate = formatting.ApplyRules(candidate)

	if err := s.repo.UpdateCandidate(ctx, caseID, candidate); err != nil {
		log.Error().Err(err).Msg("failed to persist candidate record")
		s.reject(ctx, caseID, userID, "failed to persist candidate record")
		return
	}

	s.publisher.Processed(ctx, caseID, userID)
	log.Info().Msg("cv case processed")
}

// structure produces a candidate record from raw text: AI first, the
// heuristic parser when the AI path fails, an empty record when there is
// no text to parse. Always returns a usable record.
func (s *CVService) structure(ctx context.Context, log *logger.Logger, text string) *domain.CandidateRecord {
	if s.agent != nil && s.agent.Available() {
		candidate, err := s.structureWithAgent(ctx, text)
		if err == nil {
			return candidate
		}
		log.Warn().Err(err).Msg("ai structuring failed, falling back to heuristic parser")
	}

	if text != "" {
		return parser.Parse(text)
	}
	return domain.EmptyCandidate()
}

// structureWithAgent runs parse, intake comparison and house formatting
// through the agent, then merges: identity fields from the parse stage,
// everything else from the formatted output.
func (s *CVService) structureWithAgent(ctx context.Context, text string) (*domain.CandidateRecord, error) {
	parsed, err := s.agent.ConvertToStructuredData(ctx, text)
	if err != nil {
		return nil, err
	}
	compared, err := s.agent.CompareAndAdjustContent(ctx, parsed.StructuredData, map[string]any{})
	if err != nil {
		return nil, err
	}
	formatted, err := s.agent.ApplyFormattingStandards(ctx, compared.AdjustedData, map[string]any{})
	if err != nil {
		return nil, err
	}
	return mergeAgentResults(parsed, formatted), nil
}

// mergeAgentResults keeps personal info from the parse stage, which sees
// the raw text, and takes the content sections from the formatted output.
func mergeAgentResults(parsed *aiagent.ParseResult, formatted *aiagent.FormatResult) *domain.CandidateRecord {
	out := domain.EmptyCandidate()
	if parsed != nil && parsed.StructuredData != nil {
		out.PersonalInfo = parsed.StructuredData.PersonalInfo
	}
	if formatted != nil && formatted.FormattedData != nil {
		f := formatted.FormattedData
		out.Profile = f.Profile
		if f.Experience != nil {
			out.Experience = f.Experience
		}
		if f.Education != nil {
			out.Education = f.Education
		}
		if f.Skills != nil {
			out.Skills = f.Skills
		}
		if f.Interests != nil {
			out.Interests = f.Interests
		}
		if f.Languages != nil {
			out.Languages = f.Languages
		}
		if f.Certifications != nil {
			out.Certifications = f.Certifications
		}
	}
	return out
}

func (s *CVService) reject(ctx context.Context, caseID, userID, reason string) {
	if err := s.repo.UpdateStatus(ctx, caseID, domain.StatusProcessing, domain.StatusRejected); err != nil {
		s.logger.WithCaseID(caseID).Error().Err(err).Msg("failed to mark case rejected")
		return
	}
	s.publisher.Rejected(ctx, caseID, userID, reason)
}

// Get returns a case by ID.
func (s *CVService) Get(ctx context.Context, id string) (*domain.Case, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a user's cases, newest first.
func (s *CVService) List(ctx context.Context, userID string, page, perPage int) ([]*domain.Case, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, perPage)
}

// Progress reports the user-facing processing progress of a case.
func (s *CVService) Progress(ctx context.Context, id string) (*domain.ProcessingProgress, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := domain.Progress(c.ID, c.Status)
	return &p, nil
}

// UpdateCandidate applies a reviewer's manual edits. Edits only apply to
// processed cases; the house formatting rules run again so edits cannot
// bypass them.
func (s *CVService) UpdateCandidate(ctx context.Context, id string, candidate *domain.CandidateRecord) (*domain.Case, error) {
	if candidate == nil {
		return nil, errors.BadRequest("candidate record is required")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.StatusProcessed {
		return nil, errors.BadRequest(fmt.Sprintf("cannot edit a case in %s status", c.Status))
	}

	normalized := formatting.ApplyRules(candidate)
	if err := s.repo.UpdateCandidate(ctx, id, normalized); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SaveRegistrationForm validates and stores a registration form on a case.
func (s *CVService) SaveRegistrationForm(ctx context.Context, id string, form *domain.RegistrationForm) error {
	if form == nil {
		return errors.BadRequest("registration form is required")
	}
	if err := s.validate.Struct(form); err != nil {
		details := map[string]string{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return errors.Validation(details)
	}
	return s.repo.UpdateRegistrationForm(ctx, id, form)
}

// Approve finalizes a processed case. The embedding upsert is a side
// effect: its failure is logged and never blocks or reverses approval.
func (s *CVService) Approve(ctx context.Context, id, approvedBy string) (*domain.Case, error) {
	c, err := s.repo.Approve(ctx, id, approvedBy)
	if err != nil {
		return nil, err
	}

	s.publisher.Approved(ctx, c.ID, c.UserID, approvedBy)

	if s.embedder != nil && c.Candidate != nil {
		text := c.Candidate.FlattenText()
		if text != "" {
			if err := s.embedder.UpsertForCase(ctx, c.ID, c.UserID, text); err != nil {
				s.logger.WithCaseID(c.ID).Warn().Err(err).Msg("failed to store candidate embedding")
			}
		}
	}

	return c, nil
}

// Delete removes a case and its stored upload. The file delete is best
// effort; a missing file does not block row removal.
func (s *CVService) Delete(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(c.OriginalFileURL); err != nil {
		s.logger.WithCaseID(id).Warn().Err(err).Msg("failed to delete stored upload")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.Deleted(ctx, id, c.UserID)
	return nil
}
