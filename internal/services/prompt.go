package services

import (
	"fmt"
	"strings"

	"resumeai/internal/ranker"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt asks the model to pull structured fields out of a raw
// resume. The response must be bare JSON; the ingest pipeline still salvages
// fenced or slightly malformed output.
func (pb *PromptBuilder) BuildExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`Extract the following fields from this resume:

- Full Name
- Email
- Phone
- Total Experience in working
- Skills (as a list)
- Education summary
- Professional Summary

Return JSON only, no explanation, no markdown.
Resume:
%s`, resumeText)
}

// BuildAnswerPrompt asks the model to answer a recruiter query over the
// retrieved candidates. The requested format matches what the response parser
// expects: bold field labels, one all-caps header per candidate when more
// than one is described.
func (pb *PromptBuilder) BuildAnswerPrompt(query, candidateContext string) string {
	return fmt.Sprintf(`You are a recruiting assistant. Answer the query using ONLY the candidates below.

CANDIDATES:
%s

QUERY: %s

Formatting rules:
- Start each candidate with their name as a bold ALL-CAPS header, e.g. **PRIYA SHARMA**.
- Under each header, list fields as "**Name**:", "**Email**:", "**Phone**:", "**Education**:", "**Experience**:", "**Skills**:" lines.
- Skills are a comma-separated list.
- If no candidate fits, say so in plain text.`, candidateContext, query)
}

// FormatCandidateContext renders the ranked candidates as prompt context.
func FormatCandidateContext(candidates []ranker.RankedCandidate) string {
	if len(candidates) == 0 {
		return "No candidates found."
	}

	var parts []string
	for i, c := range candidates {
		var b strings.Builder
		fmt.Fprintf(&b, "--- Candidate %d (match %.0f%%) ---\n", i+1, c.MatchPercentage)
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, "Email: %s\n", c.Email)
		}
		if c.Phone != "" {
			fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
		}
		if c.ExperienceYears != nil {
			fmt.Fprintf(&b, "Experience: %.1f years\n", *c.ExperienceYears)
		}
		if len(c.Skills) > 0 {
			fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))
		}
		if c.EducationSummary != "" {
			fmt.Fprintf(&b, "Education: %s\n", c.EducationSummary)
		}
		if c.ProfessionalSummary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", c.ProfessionalSummary)
		}
		parts = append(parts, strings.TrimSpace(b.String()))
	}
	return strings.Join(parts, "\n\n")
}
