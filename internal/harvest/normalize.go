package harvest

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// tenThousand is the unit suffix used by abbreviated counts ("1.2万").
const tenThousand = "万"

// NormalizeCount turns a displayed count into an integer. Fullwidth digits
// count as their ASCII forms; everything except digits and '.' is dropped.
// A 万 marker multiplies by 10000 and rounds; plain numbers are truncated.
// Text without digits yields 0 and counts beyond int saturate at math.MaxInt.
func NormalizeCount(s string) int {
	var b strings.Builder
	for _, r := range width.Narrow.String(s) {
		if ('0' <= r && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if !hasDigit(cleaned) {
		return 0
	}

	// "1.2.3" style leftovers keep the leading number only.
	if first := strings.Index(cleaned, "."); first >= 0 {
		if second := strings.Index(cleaned[first+1:], "."); second >= 0 {
			cleaned = cleaned[:first+1+second]
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(cleaned, "."), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if strings.Contains(s, tenThousand) {
		f = math.Round(f * 10000)
	}
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return int(f)
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

var hashtagPattern = regexp.MustCompile(`#([^\s#]+)`)

// Hashtags returns the #tags embedded in text, without the leading '#'.
func Hashtags(text string) []string {
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tag := m[1]
		// "#调色[话题]#" carries a topic marker after the tag.
		if i := strings.Index(tag, "["); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
