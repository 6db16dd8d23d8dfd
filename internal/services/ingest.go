package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"resumeai/internal/models"
	"resumeai/internal/parser"
	"resumeai/internal/repositories"
)

const (
	minResumeTextLength = 50
	validationThreshold = 0.4
	embeddingChunkSize  = 8000
	embeddingOverlap    = 200
)

// IngestService turns saved resume files into stored, searchable candidates.
// Every file in a batch yields exactly one FileOutcome, ok or error, so a bad
// file never sinks its siblings.
type IngestService interface {
	ProcessBatch(ctx context.Context, files []ResumeFile) []models.FileOutcome
	ProcessFile(ctx context.Context, file ResumeFile) models.FileOutcome
}

type ingestService struct {
	candidateRepo repositories.CandidateRepository
	geminiService GeminiService
	qdrantService QdrantService
	pdfParser     PDFParserService
	chunker       TextChunker
	promptBuilder *PromptBuilder
	pool          WorkerPool
	maxRetries    int
}

func NewIngestService(
	candidateRepo repositories.CandidateRepository,
	geminiService GeminiService,
	qdrantService QdrantService,
	pdfParser PDFParserService,
	chunker TextChunker,
	promptBuilder *PromptBuilder,
	pool WorkerPool,
	maxRetries int,
) IngestService {
	return &ingestService{
		candidateRepo: candidateRepo,
		geminiService: geminiService,
		qdrantService: qdrantService,
		pdfParser:     pdfParser,
		chunker:       chunker,
		promptBuilder: promptBuilder,
		pool:          pool,
		maxRetries:    maxRetries,
	}
}

// ProcessBatch implements IngestService.
func (s *ingestService) ProcessBatch(ctx context.Context, files []ResumeFile) []models.FileOutcome {
	log.Printf("📦 Processing batch of %d resume(s)\n", len(files))
	return s.pool.Process(ctx, files, s.ProcessFile)
}

// ProcessFile implements IngestService.
func (s *ingestService) ProcessFile(ctx context.Context, file ResumeFile) models.FileOutcome {
	fail := func(detail string) models.FileOutcome {
		log.Printf("❌ %s: %s\n", file.Filename, detail)
		return models.FileOutcome{
			Filename: file.Filename,
			Status:   models.OutcomeError,
			Detail:   detail,
		}
	}

	rawText, err := s.pdfParser.ExtractText(file.Path)
	if err != nil {
		return fail(fmt.Sprintf("failed to read resume: %v", err))
	}
	if len(rawText) < minResumeTextLength {
		return fail("extracted text too short, resume may be unreadable")
	}

	fields := s.extractFields(ctx, rawText)
	salvageFields(&fields, rawText)

	if err := validateExtraction(fields); err != nil {
		return fail(err.Error())
	}

	candidate := &models.Candidate{
		ID:                  uuid.New(),
		Name:                fields.FullName,
		Email:               fields.Email,
		Phone:               fields.Phone,
		ExperienceYears:     fields.ExperienceYears,
		Skills:              fields.Skills,
		EducationSummary:    fields.EducationSummary,
		ProfessionalSummary: fields.ProfessionalSummary,
		RawText:             rawText,
		SourceFile:          file.Filename,
	}

	// The row is inserted last: an embedding or indexing failure must leave
	// nothing persisted, so a later retry of the file starts from a clean
	// slate instead of duplicating the candidate.
	embedding, err := s.geminiService.GenerateEmbedding(ctx, s.embeddingText(candidate))
	if err != nil {
		return fail(fmt.Sprintf("failed to generate embedding: %v", err))
	}
	if err := s.qdrantService.UpsertCandidate(ctx, candidate.ID, candidate.Name, embedding); err != nil {
		return fail(fmt.Sprintf("failed to index candidate: %v", err))
	}
	if err := s.candidateRepo.Create(candidate); err != nil {
		// Roll the vector back so a stale point cannot surface in search.
		if delErr := s.qdrantService.DeleteCandidate(ctx, candidate.ID); delErr != nil {
			log.Printf("⚠️ Failed to remove vector for %s: %v\n", candidate.ID, delErr)
		}
		return fail(fmt.Sprintf("failed to store candidate: %v", err))
	}

	log.Printf("✅ Ingested %s as candidate %s\n", file.Filename, candidate.ID)
	return models.FileOutcome{
		Filename:    file.Filename,
		Status:      models.OutcomeOK,
		Detail:      "processed successfully",
		CandidateID: candidate.ID.String(),
	}
}

// embeddingText builds the text that represents a candidate in vector space.
// The raw resume is chunked and only the first chunk is used, so an unusually
// long resume still fits the embedding model's input window.
func (s *ingestService) embeddingText(c *models.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	if len(c.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))
	}
	if c.ExperienceYears != nil {
		fmt.Fprintf(&b, "Experience: %.1f years\n", *c.ExperienceYears)
	}
	if c.EducationSummary != "" {
		fmt.Fprintf(&b, "Education: %s\n", c.EducationSummary)
	}
	if c.ProfessionalSummary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", c.ProfessionalSummary)
	}

	chunks := s.chunker.ChunkText(c.RawText, embeddingChunkSize, embeddingOverlap)
	if len(chunks) > 0 {
		b.WriteString(chunks[0])
	}
	return b.String()
}

// extractedFields is the normalized result of the LLM extraction step.
type extractedFields struct {
	FullName            string
	Email               string
	Phone               string
	ExperienceYears     *float64
	Skills              []string
	EducationSummary    string
	ProfessionalSummary string
}

// extractFields asks the model for structured fields. If the model call or
// the JSON decode fails the pipeline continues with empty fields; the regex
// salvage pass may still produce enough for a valid candidate.
func (s *ingestService) extractFields(ctx context.Context, rawText string) extractedFields {
	prompt := s.promptBuilder.BuildExtractionPrompt(rawText)
	response, err := s.geminiService.GenerateTextWithRetry(ctx, prompt, 0.1, s.maxRetries)
	if err != nil {
		log.Printf("⚠️ Extraction call failed, falling back to regex salvage: %v\n", err)
		return extractedFields{}
	}

	raw := decodeExtraction(response)
	if raw == nil {
		log.Println("⚠️ Extraction response was not valid JSON, falling back to regex salvage")
		return extractedFields{}
	}
	return canonicalizeFields(raw)
}

var trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

// decodeExtraction pulls a JSON object out of a model response that may be
// wrapped in markdown fences or prose, and tolerates trailing commas. Returns
// nil when nothing decodable remains.
func decodeExtraction(response string) map[string]interface{} {
	block := extractJSONBlock(response)
	if block == "" {
		return nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		block = trailingCommaPattern.ReplaceAllString(block, "$1")
		if err := json.Unmarshal([]byte(block), &raw); err != nil {
			return nil
		}
	}
	return raw
}

func extractJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// Key variants the extraction model has been seen emitting for each field.
var (
	fullNameKeys   = []string{"full name", "full_name", "fullname", "name"}
	emailKeys      = []string{"email", "email address", "email_address"}
	phoneKeys      = []string{"phone", "phone number", "phone_number", "mobile", "contact"}
	experienceKeys = []string{"total experience in working", "total experience", "total_experience", "experience", "experience_years", "years of experience"}
	skillsKeys     = []string{"skills", "skill", "key skills", "technical skills"}
	educationKeys  = []string{"education summary", "education_summary", "education"}
	summaryKeys    = []string{"professional summary", "professional_summary", "summary", "profile"}
)

// canonicalizeFields maps whatever key spelling the model used onto the fixed
// field set. Lookup is case-insensitive.
func canonicalizeFields(raw map[string]interface{}) extractedFields {
	lower := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}

	pick := func(keys []string) (interface{}, bool) {
		for _, k := range keys {
			if v, ok := lower[k]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}
	pickString := func(keys []string) string {
		v, ok := pick(keys)
		if !ok {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			return ""
		}
		return strings.TrimSpace(s)
	}

	fields := extractedFields{
		FullName:            pickString(fullNameKeys),
		Email:               pickString(emailKeys),
		Phone:               pickString(phoneKeys),
		EducationSummary:    pickString(educationKeys),
		ProfessionalSummary: pickString(summaryKeys),
	}

	if v, ok := pick(experienceKeys); ok {
		fields.ExperienceYears = parseExperienceYears(v)
	}
	if v, ok := pick(skillsKeys); ok {
		fields.Skills = normalizeSkills(v)
	}
	return fields
}

var leadingNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseExperienceYears accepts a bare number or a string like "3.5 years".
func parseExperienceYears(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		match := leadingNumberPattern.FindString(val)
		if match == "" {
			return nil
		}
		years, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return nil
		}
		return &years
	}
	return nil
}

// normalizeSkills accepts a JSON list or a single delimited string.
func normalizeSkills(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		var skills []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					skills = append(skills, s)
				}
			}
		}
		return skills
	case string:
		return parser.SplitSkills(val)
	}
	return nil
}

// salvageFields fills missing contact fields and the name straight from the
// raw resume text. The model can miss fields that simple patterns find.
func salvageFields(fields *extractedFields, rawText string) {
	if fields.Email == "" {
		if email, ok := parser.ExtractEmail(rawText); ok {
			fields.Email = email
		}
	}
	if fields.Phone == "" {
		if phone, ok := parser.ExtractPhone(rawText); ok {
			fields.Phone = phone
		}
	}
	if fields.FullName == "" {
		if name, ok := parser.ExtractLooseName(rawText); ok {
			fields.FullName = name
		}
	}
}

// Field weights for the extraction quality score. Identity and contact
// fields dominate so a resume that only yields a summary does not pass.
var fieldWeights = struct {
	name, email, phone, skills, experience, education, summary float64
}{2, 2, 1, 2, 2, 1, 1}

// validateExtraction rejects candidates with too little extracted signal. A
// name and at least one contact channel are hard requirements; beyond that a
// weighted coverage score must clear the threshold.
func validateExtraction(fields extractedFields) error {
	var missing []string
	if fields.FullName == "" {
		missing = append(missing, "name")
	}
	if fields.Email == "" && fields.Phone == "" {
		missing = append(missing, "contact info (email or phone)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("validation failed: missing %s", strings.Join(missing, "; "))
	}

	var score, total float64
	addField := func(weight float64, present bool) {
		total += weight
		if present {
			score += weight
		}
	}
	addField(fieldWeights.name, fields.FullName != "")
	addField(fieldWeights.email, fields.Email != "")
	addField(fieldWeights.phone, fields.Phone != "")
	addField(fieldWeights.skills, len(fields.Skills) > 0)
	addField(fieldWeights.experience, fields.ExperienceYears != nil)
	addField(fieldWeights.education, fields.EducationSummary != "")
	addField(fieldWeights.summary, fields.ProfessionalSummary != "")

	if score/total < validationThreshold {
		return fmt.Errorf("insufficient data extracted, resume details are too sparse")
	}
	return nil
}
