package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indentedResponse = `Here is the best match:
- **Name**: Priya Sharma
- **Email**: priya.sharma@example.com
- **Phone**: +91 98765 43210
- **CGPA**: 8.9
- **Education**:
  - B.Tech Computer Science, IIT Delhi
  - Graduated 2021
- **Experience**:
  - 3 years backend development
- **Skills**: Go, PostgreSQL, Docker`

const multiSectionResponse = `I found two strong matches.

**PRIYA SHARMA**
**Email**: priya@example.com
**Skills**: Go, Kubernetes

**RAHUL VERMA**
**Email**: rahul@example.com
**Skills**: Python, Airflow`

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Tier
	}{
		{"bulleted bold headers", indentedResponse, TierIndented},
		{"multiple bold sections", "**ALICE** is great. **BOB** too.", TierMultiSection},
		{"plain text", "Priya Sharma seems like a fit.", TierFallback},
		{"single bold span only", "the **best** candidate overall", TierFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestParse_Indented(t *testing.T) {
	records := Parse(indentedResponse)
	require.Len(t, records, 1) // the indented grammar never yields more than one

	rec := records[0]
	assert.Equal(t, "Priya Sharma", rec.Name)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "priya.sharma@example.com", *rec.Email)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "+91 98765 43210", *rec.Phone)
	require.NotNil(t, rec.CGPA)
	assert.Equal(t, "8.9", *rec.CGPA)
	require.NotNil(t, rec.Education)
	assert.Contains(t, *rec.Education, "IIT Delhi")
	require.NotNil(t, rec.Experience)
	assert.Contains(t, *rec.Experience, "3 years backend development")
	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, rec.Skills)
}

func TestParse_MultiSection(t *testing.T) {
	records := Parse(multiSectionResponse)
	require.Len(t, records, 2)

	// Input order preserved.
	assert.Equal(t, "PRIYA SHARMA", records[0].Name)
	assert.Equal(t, "RAHUL VERMA", records[1].Name)

	require.NotNil(t, records[0].Email)
	assert.Equal(t, "priya@example.com", *records[0].Email)
	assert.Equal(t, []string{"Go", "Kubernetes"}, records[0].Skills)

	require.NotNil(t, records[1].Email)
	assert.Equal(t, "rahul@example.com", *records[1].Email)
	assert.Equal(t, []string{"Python", "Airflow"}, records[1].Skills)
}

func TestParse_MultiSectionNameLabelOverridesHeader(t *testing.T) {
	text := "**MATCH ONE**\n**Name**: Anita Rao\n**Email**: anita@example.com\n\n**MATCH TWO**\n**Email**: second@example.com"

	records := Parse(text)
	require.Len(t, records, 2)
	assert.Equal(t, "Anita Rao", records[0].Name)
	assert.Equal(t, "MATCH TWO", records[1].Name)
}

func TestParse_FallbackKeepsOriginalText(t *testing.T) {
	text := "the closest match is Priya Sharma (priya@example.com) with strong skills: Go, SQL."

	records := Parse(text)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Priya Sharma", rec.Name)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "priya@example.com", *rec.Email)
	assert.Equal(t, []string{"Go", "SQL"}, rec.Skills)
	// The whole blob is retained verbatim so nothing is silently dropped.
	require.NotNil(t, rec.AdditionalInfo)
	assert.Equal(t, text, *rec.AdditionalInfo)
}

func TestParse_FallbackPlaceholderName(t *testing.T) {
	text := "no suitable match was found for this query"

	records := Parse(text)
	require.Len(t, records, 1)
	assert.Equal(t, FallbackName, records[0].Name)
	require.NotNil(t, records[0].AdditionalInfo)
	assert.Equal(t, text, *records[0].AdditionalInfo)
}

func TestParse_Idempotent(t *testing.T) {
	for _, text := range []string{indentedResponse, multiSectionResponse, "loose text about Maya Iyer"} {
		first := Parse(text)
		second := Parse(text)
		assert.Equal(t, first, second)
	}
}

func TestParse_IndentedUnclaimedLinesLandInAdditionalInfo(t *testing.T) {
	text := "- **Name**: Dev Patel\nAvailable from next month.\n- **Skills**: Go"

	records := Parse(text)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].AdditionalInfo)
	assert.Contains(t, *records[0].AdditionalInfo, "Available from next month.")
}

func TestParse_KeywordNumericWithoutLabel(t *testing.T) {
	text := "- **Name**: Sana Khan\n- **Notes**: CGPA 9.1, scored 88% in board exams"

	records := Parse(text)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].CGPA)
	assert.Equal(t, "9.1", *records[0].CGPA)
	require.NotNil(t, records[0].Percentage)
	assert.Equal(t, "88%", *records[0].Percentage)
}
