package app

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a display name into a URL-safe slug:
// lowercase, specials stripped, whitespace to single hyphens, no
// leading/trailing or doubled hyphens.
func GenerateSlug(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug appends a random 6-char suffix so imports of similarly named
// places never collide on the slug unique index.
func UniqueSlug(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return base + "-" + suffix
}
