package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// NormalizeEmail lowercases and trims an email address. All uniqueness checks on
// waitlist entries run against the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a business name into a URL-safe slug: lowercased, with runs of
// non-alphanumeric characters collapsed into single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "seller"
	}
	return slug
}

// SlugWithSuffix returns the nth candidate for a base slug. The first candidate is
// the base itself; collisions are resolved as base-2, base-3 and so on. Issued slugs
// are public URLs and are never reassigned.
func SlugWithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
