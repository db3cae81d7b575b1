package jira_test

import (
	"testing"

	"github.com/fwojciec/ticketchat/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphs(t *testing.T) {
	t.Parallel()

	t.Run("splits on blank lines", func(t *testing.T) {
		t.Parallel()
		doc := jira.Paragraphs("first\n\nsecond\r\n\r\nthird")
		require.Len(t, doc.Content, 3)
		assert.Equal(t, "paragraph", doc.Content[1].Type)
		assert.Equal(t, "second", doc.Content[1].Content[0].Text)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		doc := jira.Paragraphs("  ")
		assert.Equal(t, "doc", doc.Type)
		assert.Equal(t, 1, doc.Version)
		assert.Empty(t, doc.Content)
	})
}

func TestDocument_PlainText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "one\n\ntwo", jira.Paragraphs("one\n\ntwo").PlainText())

	var nilDoc *jira.Document
	assert.Empty(t, nilDoc.PlainText())
}
