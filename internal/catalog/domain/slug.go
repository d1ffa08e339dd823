package domain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// SlugLookup returns the existing slugs matching the given base token or any
// of its numeric-suffix variants, case-insensitively.
type SlugLookup func(ctx context.Context, base string) ([]string, error)

// Slugify normalizes a display name into a lowercase, hyphen-separated,
// URL-safe base token.
func Slugify(name string) string {
	return slug.Make(name)
}

// SlugPattern builds the case-insensitive regular expression matching a base
// token and its numeric-suffix variants (base, base-2, base-3, ...).
func SlugPattern(base string) string {
	return "^(" + regexp.QuoteMeta(base) + ")(-[0-9]*)?$"
}

// GenerateSlug derives a slug for name that is unique against the slugs
// visible to lookup at call time. With N existing matches the result is
// base-(N+1); this count-based scheme is a best-effort optimization and the
// storage layer's unique index remains the authoritative arbiter under
// concurrent creation.
func GenerateSlug(ctx context.Context, name string, lookup SlugLookup) (string, error) {
	base := Slugify(name)
	existing, err := lookup(ctx, base)
	if err != nil {
		return "", err
	}
	if len(existing) == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, len(existing)+1), nil
}

// NextFreeSlug returns base, or base-N with the smallest N >= 2 that is not in
// taken. Used to recover when the count-based scheme collides with a gap left
// in the suffix sequence.
func NextFreeSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[strings.ToLower(s)] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
