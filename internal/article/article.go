// Package article provides the per-day transforms applied to base dataset articles.
//
// Articles are kept as raw JSON objects. Only the publishedAt and link fields
// are ever interpreted; every other field, including its key order, is passed
// through unchanged.
package article

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// PublishedAtField is the only article field rewritten per snapshot.
	PublishedAtField = "publishedAt"
	// LinkField identifies an article when de-duplicating.
	LinkField = "link"
	// DefaultTimeOfDay is used when an article has no usable publishedAt.
	DefaultTimeOfDay = "05:00:00.000Z"
)

// ErrInvalidArticle is returned when an article is not a JSON object.
var ErrInvalidArticle = errors.New("article must be a JSON object")

// Article is an opaque JSON object from the base dataset.
type Article struct {
	raw []byte
}

// Parse validates raw as a JSON object and returns an Article holding its own copy.
func Parse(raw []byte) (Article, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return Article{}, ErrInvalidArticle
	}
	return Article{raw: bytes.Clone(raw)}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests and literals.
func MustParse(raw string) Article {
	a, err := Parse([]byte(raw))
	if err != nil {
		panic(fmt.Sprintf("article: %v: %s", err, raw))
	}
	return a
}

// Raw returns the article's JSON encoding. Callers must not modify it.
func (a Article) Raw() []byte {
	return a.raw
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	return Article{raw: bytes.Clone(a.raw)}
}

// PublishedAt returns the publishedAt value when it is present and a string.
func (a Article) PublishedAt() (string, bool) {
	v := gjson.GetBytes(a.raw, PublishedAtField)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// Link returns the article's link, or "" when missing.
func (a Article) Link() string {
	v := gjson.GetBytes(a.raw, LinkField)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// MarshalJSON implements json.Marshaler.
func (a Article) MarshalJSON() ([]byte, error) {
	if a.raw == nil {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Article) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// TimeOfDay returns the time portion of the article's publishedAt: the text
// following the first "T", up to any second "T". Articles without a string
// publishedAt, or whose value has no "T", get fallback.
func (a Article) TimeOfDay(fallback string) string {
	v, ok := a.PublishedAt()
	if !ok {
		return fallback
	}
	_, after, found := strings.Cut(v, "T")
	if !found {
		return fallback
	}
	if i := strings.IndexByte(after, 'T'); i >= 0 {
		after = after[:i]
	}
	return after
}

// Restamp returns a copy of a whose publishedAt is date + "T" + its time of day.
// The receiver is never modified.
func Restamp(a Article, date, fallback string) (Article, error) {
	stamp := date + "T" + a.TimeOfDay(fallback)
	out, err := sjson.SetBytes(a.Clone().raw, PublishedAtField, stamp)
	if err != nil {
		return Article{}, fmt.Errorf("set %s: %w", PublishedAtField, err)
	}
	return Article{raw: out}, nil
}
