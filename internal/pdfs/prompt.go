package pdfs

import (
	"strings"

	"docchat-backend/internal/llm"
)

// MaxContextChars caps how much document text is sent with each question.
const MaxContextChars = 8000

const systemPrompt = `You are a helpful AI assistant that helps users understand PDF documents.
You have access to a PDF document and should provide accurate, helpful responses based on the document content.
When referencing information, always mention the page number if possible.
Keep responses concise and relevant.`

const userPromptTemplate = `Document Content: {{content}}

User Question: {{question}}

Please provide a helpful response based on the document content. If you reference specific information, mention the page number.`

// TruncateRunes returns at most n code points of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// BuildMessages renders the chat prompt for a question about text.
func BuildMessages(text, question string) []llm.Message {
	user := strings.NewReplacer(
		"{{content}}", TruncateRunes(text, MaxContextChars),
		"{{question}}", question,
	).Replace(userPromptTemplate)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user},
	}
}
