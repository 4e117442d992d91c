package pdfs

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractPageReferences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "first match only", text: "...see page 7 for details, also page 12...", want: []int{7}},
		{name: "case insensitive", text: "PAGE 3 covers it", want: []int{3}},
		{name: "multiple spaces", text: "on Page   14.", want: []int{14}},
		{name: "newline separator", text: "page\n2", want: []int{2}},
		{name: "no reference", text: "The document does not say.", want: []int{}},
		{name: "page without number", text: "this page is blank", want: []int{}},
		{name: "pages plural", text: "pages 4-5", want: []int{}},
		{name: "embedded word", text: "frontpage 9", want: []int{9}},
		{name: "leading zeros", text: "page 007", want: []int{7}},
		{name: "overflowing number saturates", text: "see page 99999999999999999999999", want: []int{math.MaxInt}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPageReferences(tt.text))
		})
	}
}

func TestExtractPageReferencesEncodesEmptyArray(t *testing.T) {
	raw, err := json.Marshal(ExtractPageReferences("nothing here"))
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", TruncateRunes("abc", 0))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "héé", TruncateRunes("hééllo", 3))
}

func TestBuildMessagesTruncatesContext(t *testing.T) {
	text := strings.Repeat("ü", MaxContextChars+500)
	msgs := BuildMessages(text, "What is this?")

	assert.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "mention the page number")
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "User Question: What is this?")
	assert.Equal(t, MaxContextChars, strings.Count(msgs[1].Content, "ü"))
	assert.True(t, utf8.ValidString(msgs[1].Content))
}

func TestBuildMessagesDoesNotExpandPlaceholdersInContent(t *testing.T) {
	msgs := BuildMessages("literal {{question}} in text", "real question")
	assert.Contains(t, msgs[1].Content, "literal {{question}} in text")
}
