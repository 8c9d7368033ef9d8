package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBlocks(t *testing.T) {
	assert.Error(t, ValidateBlocks(nil))

	err := ValidateBlocks([]BlogBlock{
		{Type: "heading", Level: 2, Text: "Intro"},
		{Type: "paragraph", Text: "Body text"},
		{Type: "list", Items: []string{"one", "two"}},
		{Type: "quote", Text: "As they say"},
		{Type: "code", Language: "go", Text: "fmt.Println()"},
	})
	assert.NoError(t, err)

	err = ValidateBlocks([]BlogBlock{{Type: "table", Text: "nope"}})
	assert.ErrorContains(t, err, "unknown content block type")
}

func TestNewsletterStatusIsTerminal(t *testing.T) {
	assert.False(t, NewsletterStatusDraft.IsTerminal())
	assert.False(t, NewsletterStatusScheduled.IsTerminal())
	assert.True(t, NewsletterStatusSent.IsTerminal())
	assert.True(t, NewsletterStatusFailed.IsTerminal())
}
