package jira

import "strings"

// Document is an Atlassian Document Format node. Jira v3 requires rich text
// fields (descriptions, comments) in this shape.
type Document struct {
	Type    string     `json:"type"`
	Version int        `json:"version,omitempty"`
	Text    string     `json:"text,omitempty"`
	Content []Document `json:"content,omitempty"`
}

// Paragraphs converts plain text to a document with one paragraph per
// blank-line separated block. Empty text yields an empty document.
func Paragraphs(text string) *Document {
	doc := &Document{Type: "doc", Version: 1, Content: []Document{}}
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		doc.Content = append(doc.Content, Document{
			Type:    "paragraph",
			Content: []Document{{Type: "text", Text: para}},
		})
	}
	return doc
}

// PlainText flattens a document back to text, joining paragraphs with a
// blank line.
func (d *Document) PlainText() string {
	if d == nil {
		return ""
	}
	if d.Type == "text" {
		return d.Text
	}
	var parts []string
	for i := range d.Content {
		if s := d.Content[i].PlainText(); s != "" {
			parts = append(parts, s)
		}
	}
	sep := ""
	if d.Type == "doc" {
		sep = "\n\n"
	}
	return strings.Join(parts, sep)
}
