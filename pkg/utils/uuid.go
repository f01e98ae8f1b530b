package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile("[^a-z0-9-]")
	hyphenRuns   = regexp.MustCompile("-+")
)

// NewRequestID generates an id for correlating log lines of one request
func NewRequestID() string {
	return uuid.New().String()
}

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug appends a short random suffix to a slug
func UniqueSlug(s string) string {
	suffix := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	base := Slugify(s)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
