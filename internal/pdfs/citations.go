package pdfs

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

var pageRefPattern = regexp.MustCompile(`(?i)page\s+(\d+)`)

// ExtractPageReferences returns the page number of the first "page N" mention, if any.
// The result is never nil so it encodes as [] when empty. Numbers too large for
// an int saturate to math.MaxInt.
func ExtractPageReferences(text string) []int {
	refs := []int{}
	m := pageRefPattern.FindStringSubmatch(text)
	if m == nil {
		return refs
	}
	n, err := strconv.ParseInt(m[1], 10, 0)
	if errors.Is(err, strconv.ErrRange) {
		n = math.MaxInt
	} else if err != nil {
		return refs
	}
	return append(refs, int(n))
}
