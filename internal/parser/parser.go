// Package parser normalizes free-form model output into typed candidate
// records. Model responses come in no contractually guaranteed shape, so the
// parser tries three progressively looser grammars and always returns
// something displayable.
package parser

import (
	"regexp"
	"strings"
	"unicode"
)

type Tier int

const (
	// TierIndented handles a single candidate described by bulleted bold
	// headers, e.g. "- **Skills**: Go, SQL".
	TierIndented Tier = iota
	// TierMultiSection handles several candidates split by bold all-caps
	// headers.
	TierMultiSection
	// TierFallback treats the whole blob as one loosely described candidate.
	TierFallback
)

// FallbackName is assigned by the fallback grammar when no name heuristic
// fires, so the caller can still decide whether to keep the record.
const FallbackName = "Unknown Candidate"

var bulletBoldHeader = regexp.MustCompile(`(?m)^\s*[-*•]\s*\*\*[^*\n]+\*\*`)

// Label variants per field, most specific first. Mirrors the key variants the
// extraction LLM is known to produce.
var (
	nameLabels       = []string{"Name", "Full Name", "Candidate Name"}
	emailLabels      = []string{"Email", "Email Address", "E-mail"}
	phoneLabels      = []string{"Phone", "Phone Number", "Contact Number", "Mobile"}
	cgpaLabels       = []string{"CGPA", "GPA"}
	percentLabels    = []string{"Percentage"}
	educationLabels  = []string{"Education", "Education Summary", "Qualification"}
	experienceLabels = []string{"Experience", "Work Experience", "Professional Summary", "Total Experience"}
	skillLabels      = []string{"Skills", "Key Skills", "Technical Skills"}
)

// Classify picks the grammar for a raw response blob. The structural sniff is
// evaluated in fixed priority order and the first match wins; a blob is never
// retried under a lower tier.
func Classify(text string) Tier {
	if loc := bulletBoldHeader.FindStringIndex(text); loc != nil {
		if strings.Contains(text[loc[0]:], ":") {
			return TierIndented
		}
	}
	if len(boldPattern.FindAllStringIndex(text, 3)) >= 2 {
		return TierMultiSection
	}
	return TierFallback
}

// Parse converts one raw response blob into an ordered sequence of candidate
// records. It never fails and holds no state across calls.
func Parse(text string) []CandidateRecord {
	switch Classify(text) {
	case TierIndented:
		return []CandidateRecord{parseIndented(text)}
	case TierMultiSection:
		return parseMultiSection(text)
	default:
		return []CandidateRecord{parseFallback(text)}
	}
}

// parseIndented treats the whole blob as exactly one candidate and scans from
// each labeled header to the next bold header for the field body. Whatever no
// field claimed ends up in AdditionalInfo.
func parseIndented(text string) CandidateRecord {
	rec, leftover := extractLabeledFields(text)
	if leftover != "" {
		rec.AdditionalInfo = strPtr(leftover)
	}
	return rec
}

// parseMultiSection splits the blob at bold all-caps headers, each of which
// starts a new candidate. Sections are parsed independently with the same
// field rules as the indented grammar; only sections that yield a name
// survive, in document order.
func parseMultiSection(text string) []CandidateRecord {
	type section struct {
		header string
		body   string
	}

	var sections []section
	headers := allCapsHeaders(text)
	if len(headers) == 0 {
		// Bold emphasis without candidate headers: one section, no
		// header-derived name.
		sections = append(sections, section{body: text})
	}
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].start
		}
		sections = append(sections, section{
			header: h.title,
			body:   text[h.end:end],
		})
	}

	var records []CandidateRecord
	for _, s := range sections {
		rec, leftover := extractLabeledFields(s.body)
		if rec.Name == "" {
			rec.Name = s.header
		}
		if leftover != "" {
			rec.AdditionalInfo = strPtr(leftover)
		}
		if rec.Valid() {
			records = append(records, rec)
		}
	}
	return records
}

// parseFallback uses the loosest heuristics and keeps the original text
// verbatim so nothing is silently dropped.
func parseFallback(text string) CandidateRecord {
	rec := CandidateRecord{AdditionalInfo: strPtr(text)}

	if name, ok := ExtractLooseName(text); ok {
		rec.Name = name
	} else {
		rec.Name = FallbackName
	}
	if email, ok := ExtractEmail(text); ok {
		rec.Email = strPtr(email)
	}
	if phone, ok := ExtractPhone(text); ok {
		rec.Phone = strPtr(phone)
	}
	rec.Skills = ExtractSkillList(text)

	return rec
}

// extractLabeledFields applies the bold-label and keyword-numeric rules to one
// candidate's text span. It returns the record plus the unclaimed leftover
// text with bullets stripped.
func extractLabeledFields(text string) (CandidateRecord, string) {
	rec := CandidateRecord{}
	working := text

	working = takeLineField(working, nameLabels, func(v string) { rec.Name = v })
	working = takeLineField(working, emailLabels, func(v string) { rec.Email = strPtr(v) })
	working = takeLineField(working, phoneLabels, func(v string) { rec.Phone = strPtr(v) })
	working = takeLineField(working, cgpaLabels, func(v string) { rec.CGPA = strPtr(v) })
	working = takeLineField(working, percentLabels, func(v string) { rec.Percentage = strPtr(v) })

	for _, label := range educationLabels {
		if body, ok := ExtractLabeledSection(working, label); ok {
			rec.Education = strPtr(body)
			working = removeLabeledSection(working, label)
			break
		}
	}
	for _, label := range experienceLabels {
		if body, ok := ExtractLabeledSection(working, label); ok {
			rec.Experience = strPtr(body)
			working = removeLabeledSection(working, label)
			break
		}
	}
	for _, label := range skillLabels {
		if body, ok := ExtractLabeledSection(working, label); ok {
			rec.Skills = SplitSkills(body)
			working = removeLabeledSection(working, label)
			break
		}
	}

	// Keyword-adjacent numeric rules when no explicit label matched.
	if rec.CGPA == nil {
		for _, kw := range cgpaLabels {
			if v, ok := ExtractKeywordNumber(text, kw); ok {
				rec.CGPA = strPtr(v)
				break
			}
		}
	}
	if rec.Percentage == nil {
		if v, ok := ExtractPercent(working); ok {
			rec.Percentage = strPtr(v)
		}
	}

	return rec, cleanLeftover(working)
}

func takeLineField(text string, labels []string, assign func(string)) string {
	for _, label := range labels {
		if v, rem, ok := ExtractBoldField(text, label); ok {
			if v != "" {
				assign(v)
			}
			return rem
		}
	}
	return text
}

// removeLabeledSection cuts a labeled section (header through next bold
// header) out of the text. Mirrors the span ExtractLabeledSection reads.
func removeLabeledSection(text, label string) string {
	re := regexp.MustCompile(`(?i)\*\*\s*` + regexp.QuoteMeta(label) + `\s*\*\*\s*:?`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}

	end := len(text)
	if next := boldPattern.FindStringIndex(text[loc[1]:]); next != nil {
		end = loc[1] + next[0]
	}
	return text[:loc[0]] + text[end:]
}

// cleanLeftover strips bullets and blank lines from unclaimed text. Anything
// that survives becomes AdditionalInfo.
func cleanLeftover(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

type header struct {
	start int
	end   int
	title string
}

func allCapsHeaders(text string) []header {
	var headers []header
	for _, loc := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		title := strings.TrimSpace(text[loc[2]:loc[3]])
		if isAllCaps(title) {
			headers = append(headers, header{start: loc[0], end: loc[1], title: title})
		}
	}
	return headers
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}
