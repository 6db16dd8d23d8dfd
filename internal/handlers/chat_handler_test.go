package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"resumeai/internal/models"
)

func TestDeriveTitleFromFirstUserMessage(t *testing.T) {
	messages := []models.MessagePayload{
		{Role: "assistant", Content: "How can I help?"},
		{Role: "user", Content: "Find me a Go engineer"},
	}
	assert.Equal(t, "Find me a Go engineer", deriveTitle(messages))
}

func TestDeriveTitleTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("a", 80)
	title := deriveTitle([]models.MessagePayload{{Role: "user", Content: long}})
	assert.Equal(t, strings.Repeat("a", chatTitleMaxLen), title)
}

func TestDeriveTitleTruncatesOnRuneBoundary(t *testing.T) {
	// Multi-byte content straddling the cut point must still yield valid
	// UTF-8.
	long := strings.Repeat("a", chatTitleMaxLen-2) + "日本語のクエリ"
	title := deriveTitle([]models.MessagePayload{{Role: "user", Content: long}})

	assert.True(t, utf8.ValidString(title))
	assert.Len(t, []rune(title), chatTitleMaxLen)
	assert.True(t, strings.HasSuffix(title, "日本"))
}

func TestDeriveTitleDefaultsWithoutUserMessage(t *testing.T) {
	messages := []models.MessagePayload{{Role: "assistant", Content: "hello"}}
	assert.Equal(t, "New chat", deriveTitle(messages))
}
