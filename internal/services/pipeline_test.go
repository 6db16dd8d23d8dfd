package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai/internal/models"
)

const fakeResumeText = `Priya Sharma
Senior Backend Engineer
priya@example.com | +91 98765 43210
Skills: Go, PostgreSQL, Docker
B.Tech Computer Science, IIT Delhi`

const fakeExtractionJSON = `{"Full Name": "Priya Sharma", "Email": "priya@example.com", "Phone": "+91 98765 43210", "Skills": ["Go", "PostgreSQL"]}`

type fakeCandidateRepo struct {
	created   int
	createErr error
	last      *models.Candidate
}

func (f *fakeCandidateRepo) Create(c *models.Candidate) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	f.last = c
	return nil
}

func (f *fakeCandidateRepo) FindByID(uuid.UUID) (*models.Candidate, error) {
	return nil, errors.New("not found")
}

func (f *fakeCandidateRepo) FindByIDs([]uuid.UUID) ([]models.Candidate, error) {
	return nil, nil
}

func (f *fakeCandidateRepo) List(int, int) ([]models.Candidate, error) {
	return nil, nil
}

type fakeGemini struct {
	response string
	embedErr error
}

func (f *fakeGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2}, nil
}

func (f *fakeGemini) GenerateText(context.Context, string, float32) (string, error) {
	return f.response, nil
}

func (f *fakeGemini) GenerateTextWithRetry(context.Context, string, float32, int) (string, error) {
	return f.response, nil
}

type fakeQdrant struct {
	upserts   int
	deletes   int
	upsertErr error
}

func (f *fakeQdrant) InitCollection() error { return nil }

func (f *fakeQdrant) UpsertCandidate(context.Context, uuid.UUID, string, []float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	return nil
}

func (f *fakeQdrant) SearchCandidates(context.Context, []float32, int) ([]CandidateHit, error) {
	return nil, nil
}

func (f *fakeQdrant) DeleteCandidate(context.Context, uuid.UUID) error {
	f.deletes++
	return nil
}

type fakeResumeReader struct {
	text string
	err  error
}

func (f *fakeResumeReader) ExtractText(string) (string, error) {
	return f.text, f.err
}

func newTestIngest(repo *fakeCandidateRepo, gemini *fakeGemini, qdrant *fakeQdrant) IngestService {
	return NewIngestService(
		repo,
		gemini,
		qdrant,
		&fakeResumeReader{text: fakeResumeText},
		NewTextChunker(),
		NewPromptBuilder(),
		NewWorkerPool(1),
		1,
	)
}

func TestProcessFileSuccess(t *testing.T) {
	repo := &fakeCandidateRepo{}
	qdrant := &fakeQdrant{}
	svc := newTestIngest(repo, &fakeGemini{response: fakeExtractionJSON}, qdrant)

	outcome := svc.ProcessFile(context.Background(), ResumeFile{Filename: "priya.pdf", Path: "/tmp/priya.pdf"})

	assert.Equal(t, models.OutcomeOK, outcome.Status)
	assert.Equal(t, "priya.pdf", outcome.Filename)
	assert.NotEmpty(t, outcome.CandidateID)
	assert.Equal(t, 1, repo.created)
	assert.Equal(t, 1, qdrant.upserts)
	require.NotNil(t, repo.last)
	assert.Equal(t, "Priya Sharma", repo.last.Name)
}

func TestProcessFileEmbeddingErrorLeavesNoRow(t *testing.T) {
	repo := &fakeCandidateRepo{}
	qdrant := &fakeQdrant{}
	gemini := &fakeGemini{response: fakeExtractionJSON, embedErr: errors.New("quota exhausted")}
	svc := newTestIngest(repo, gemini, qdrant)

	outcome := svc.ProcessFile(context.Background(), ResumeFile{Filename: "priya.pdf", Path: "/tmp/priya.pdf"})

	assert.Equal(t, models.OutcomeError, outcome.Status)
	// An error outcome must leave nothing persisted, so a retry of the same
	// file cannot create a duplicate candidate.
	assert.Equal(t, 0, repo.created)
	assert.Equal(t, 0, qdrant.upserts)
}

func TestProcessFileIndexingErrorLeavesNoRow(t *testing.T) {
	repo := &fakeCandidateRepo{}
	qdrant := &fakeQdrant{upsertErr: errors.New("collection unavailable")}
	svc := newTestIngest(repo, &fakeGemini{response: fakeExtractionJSON}, qdrant)

	outcome := svc.ProcessFile(context.Background(), ResumeFile{Filename: "priya.pdf", Path: "/tmp/priya.pdf"})

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, 0, repo.created)
}

func TestProcessFileStoreErrorRemovesVector(t *testing.T) {
	repo := &fakeCandidateRepo{createErr: errors.New("connection reset")}
	qdrant := &fakeQdrant{}
	svc := newTestIngest(repo, &fakeGemini{response: fakeExtractionJSON}, qdrant)

	outcome := svc.ProcessFile(context.Background(), ResumeFile{Filename: "priya.pdf", Path: "/tmp/priya.pdf"})

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, 0, repo.created)
	assert.Equal(t, 1, qdrant.deletes)
}
