package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Field extractors. Each one pulls a single semantic field out of a text span.
// They never fail: a miss is reported through the ok flag, and the first match
// in document order always wins.

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?\d[\d\-\s().]{6,}\d`)
	percentPattern = regexp.MustCompile(`\b(\d{1,3}(?:\.\d+)?)\s*%`)
	boldPattern    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	// First capitalized run of words. Known precision gap: a capitalized
	// common word at the start of a sentence can be picked up as a name.
	looseNamePattern = regexp.MustCompile(`[A-Z][a-zA-Z]{2,}(?:[ \t]+[A-Z][a-zA-Z.\-]+){0,3}`)
	skillsLinePattern = regexp.MustCompile(`(?i)\bskills?\b[^:\n]*:?\s*([^\n]+)`)
	bulletPrefix      = regexp.MustCompile(`^\s*[-*•]+\s*`)
)

// ExtractBoldField returns the rest of the line after a "**Label**:" header.
// The remainder has the matched line removed so later extractors do not
// consume text already attributed to this field.
func ExtractBoldField(text, label string) (value, remainder string, ok bool) {
	re := regexp.MustCompile(`(?im)^.*\*\*\s*` + regexp.QuoteMeta(label) + `\s*\*\*\s*:\s*([^\n]*)$`)
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text, false
	}

	value = strings.TrimSpace(text[loc[2]:loc[3]])
	remainder = text[:loc[0]] + text[loc[1]:]
	return value, remainder, true
}

// ExtractLabeledSection returns everything between a field's "**Label**"
// header and the next bold header (or end of text), with leading bullet
// markers stripped from each line.
func ExtractLabeledSection(text, label string) (body string, ok bool) {
	re := regexp.MustCompile(`(?i)\*\*\s*` + regexp.QuoteMeta(label) + `\s*\*\*\s*:?`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	if next := boldPattern.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}

	var lines []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}

	body = strings.TrimSpace(strings.Join(lines, "\n"))
	if body == "" {
		return "", false
	}
	return body, true
}

// ExtractKeywordNumber finds a cardinal number immediately following a known
// keyword, e.g. "CGPA 8.5" or "GPA: 3.9".
func ExtractKeywordNumber(text, keyword string) (string, bool) {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b[^0-9\n]{0,15}(\d+(?:\.\d+)?)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractPercent finds a bare "NN%" token and returns it normalized as "NN%".
func ExtractPercent(text string) (string, bool) {
	m := percentPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s%%", m[1]), true
}

// ExtractEmail finds an email-shaped token anywhere in the text.
func ExtractEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// ExtractPhone finds a phone-shaped digit run and strips formatting noise.
func ExtractPhone(text string) (string, bool) {
	m := phonePattern.FindString(text)
	if m == "" {
		return "", false
	}

	var b strings.Builder
	for _, r := range m {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if b.Len() > 0 {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " "), true
}

// ExtractLooseName returns the first capitalized run of words in the text.
// Lowest-confidence rule, used only by the fallback grammar and by raw-text
// salvage during ingest.
func ExtractLooseName(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		// Mask email tokens so their capitalized parts are not mistaken
		// for a name.
		line = emailPattern.ReplaceAllString(line, " ")
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if m := looseNamePattern.FindString(line); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

// ExtractSkillList finds a comma-separated list following a skills keyword.
func ExtractSkillList(text string) []string {
	m := skillsLinePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return SplitSkills(m[1])
}

// SplitSkills turns free-form skill text into an ordered list of trimmed,
// non-empty entries. Commas, newlines and bullet markers all act as
// separators.
func SplitSkills(raw string) []string {
	var skills []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	}) {
		part = strings.TrimSpace(bulletPrefix.ReplaceAllString(part, ""))
		part = strings.TrimSuffix(part, ".")
		if part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
