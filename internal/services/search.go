package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"resumeai/internal/models"
	"resumeai/internal/parser"
	"resumeai/internal/ranker"
	"resumeai/internal/repositories"
)

const defaultTopK = 5

// SearchResult is the full answer to a recruiter query: the model's prose
// answer, the structured records parsed back out of it, and the ranked
// candidates the answer was grounded on.
type SearchResult struct {
	Answer     string                   `json:"answer"`
	Records    []parser.CandidateRecord `json:"records"`
	Candidates []ranker.RankedCandidate `json:"candidates"`
}

type SearchService interface {
	Search(ctx context.Context, query string, topK int) (*SearchResult, error)
}

type searchService struct {
	candidateRepo repositories.CandidateRepository
	geminiService GeminiService
	qdrantService QdrantService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewSearchService(
	candidateRepo repositories.CandidateRepository,
	geminiService GeminiService,
	qdrantService QdrantService,
	promptBuilder *PromptBuilder,
	maxRetries int,
) SearchService {
	return &searchService{
		candidateRepo: candidateRepo,
		geminiService: geminiService,
		qdrantService: qdrantService,
		promptBuilder: promptBuilder,
		maxRetries:    maxRetries,
	}
}

// Search implements SearchService.
func (s *searchService) Search(ctx context.Context, query string, topK int) (*SearchResult, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	log.Printf("🔍 Searching candidates for: %q (top %d)\n", query, topK)

	queryEmbedding, err := s.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.qdrantService.SearchCandidates(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}
	if len(hits) == 0 {
		return &SearchResult{Answer: "No matching candidates found."}, nil
	}

	ranked, err := s.loadRanked(hits)
	if err != nil {
		return nil, err
	}

	prompt := s.promptBuilder.BuildAnswerPrompt(query, FormatCandidateContext(ranked))
	answer, err := s.geminiService.GenerateTextWithRetry(ctx, prompt, 0.3, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	var records []parser.CandidateRecord
	for _, rec := range parser.Parse(answer) {
		if rec.Valid() {
			records = append(records, rec)
		}
	}

	return &SearchResult{
		Answer:     answer,
		Records:    records,
		Candidates: ranked,
	}, nil
}

// loadRanked resolves vector hits to stored candidates and annotates them
// with match percentages, preserving the hit order (closest first).
func (s *searchService) loadRanked(hits []CandidateHit) ([]ranker.RankedCandidate, error) {
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.CandidateID)
	}

	candidates, err := s.candidateRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	byID := make(map[uuid.UUID]models.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	var ordered []models.Candidate
	var distances []float64
	for _, h := range hits {
		c, ok := byID[h.CandidateID]
		if !ok {
			// Vector store knows an id the database does not; stale point,
			// skip it.
			log.Printf("⚠️ Candidate %s indexed but not stored, skipping\n", h.CandidateID)
			continue
		}
		ordered = append(ordered, c)
		distances = append(distances, h.Distance)
	}

	return ranker.Annotate(ordered, distances), nil
}
