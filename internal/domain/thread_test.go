package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveThreadTitleShortPrompt(t *testing.T) {
	assert.Equal(t, "Explain goroutines...", DeriveThreadTitle("Explain goroutines"))
}

func TestDeriveThreadTitleTruncatesLongPrompt(t *testing.T) {
	long := strings.Repeat("a", 80)

	title := DeriveThreadTitle(long)

	assert.Equal(t, strings.Repeat("a", 50)+"...", title)
}

func TestDeriveThreadTitleCountsRunesNotBytes(t *testing.T) {
	long := strings.Repeat("я", 60)

	title := DeriveThreadTitle(long)

	assert.Equal(t, strings.Repeat("я", 50)+"...", title)
}

func TestDeriveThreadTitleEmptyPrompt(t *testing.T) {
	assert.Equal(t, "New thread...", DeriveThreadTitle(""))
	assert.Equal(t, "New thread...", DeriveThreadTitle("   "))
}

func TestFirstUserMessage(t *testing.T) {
	messages := []Message{
		{Role: MessageRoleSystem, Content: "system prompt"},
		{Role: MessageRoleUser, Content: "the question"},
		{Role: MessageRoleAssistant, Content: "the answer"},
	}

	first, ok := FirstUserMessage(messages)
	assert.True(t, ok)
	assert.Equal(t, "the question", first.Content)

	_, ok = FirstUserMessage(nil)
	assert.False(t, ok)
}
