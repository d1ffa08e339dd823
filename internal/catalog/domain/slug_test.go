package domain

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLookup(slugs ...string) SlugLookup {
	return func(_ context.Context, _ string) ([]string, error) {
		return slugs, nil
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Burger Barn", want: "burger-barn"},
		{name: "punctuation stripped", in: "Burger Barn!", want: "burger-barn"},
		{name: "accents transliterated", in: "Café Olé", want: "cafe-ole"},
		{name: "collapsed whitespace", in: "  Taco   Truck  ", want: "taco-truck"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}

func TestGenerateSlug_NoMatches(t *testing.T) {
	got, err := GenerateSlug(context.Background(), "Burger Barn", staticLookup())
	require.NoError(t, err)
	assert.Equal(t, "burger-barn", got)
}

func TestGenerateSlug_CountSuffixing(t *testing.T) {
	got, err := GenerateSlug(context.Background(), "Burger Barn", staticLookup("burger-barn"))
	require.NoError(t, err)
	assert.Equal(t, "burger-barn-2", got)

	got, err = GenerateSlug(context.Background(), "Burger Barn", staticLookup("burger-barn", "burger-barn-2"))
	require.NoError(t, err)
	assert.Equal(t, "burger-barn-3", got)
}

func TestGenerateSlug_SameBaseDifferentNames(t *testing.T) {
	// Two names that normalize to the same base token get distinct slugs.
	first, err := GenerateSlug(context.Background(), "Taco Truck", staticLookup())
	require.NoError(t, err)
	second, err := GenerateSlug(context.Background(), "TACO TRUCK!", staticLookup(first))
	require.NoError(t, err)

	assert.Equal(t, "taco-truck", first)
	assert.Equal(t, "taco-truck-2", second)
}

func TestSlugPattern(t *testing.T) {
	re := regexp.MustCompile("(?i)" + SlugPattern("burger-barn"))

	assert.True(t, re.MatchString("burger-barn"))
	assert.True(t, re.MatchString("burger-barn-2"))
	assert.True(t, re.MatchString("Burger-Barn-10"))
	assert.False(t, re.MatchString("burger-barn-deluxe"))
	assert.False(t, re.MatchString("the-burger-barn"))
}

func TestNextFreeSlug(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{name: "base free", taken: nil, want: "burger-barn"},
		{name: "base taken", taken: []string{"burger-barn"}, want: "burger-barn-2"},
		{name: "fills gap left by deletion", taken: []string{"burger-barn", "burger-barn-3"}, want: "burger-barn-2"},
		{name: "dense sequence", taken: []string{"burger-barn", "burger-barn-2", "burger-barn-3"}, want: "burger-barn-4"},
		{name: "case insensitive", taken: []string{"Burger-Barn"}, want: "burger-barn-2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextFreeSlug("burger-barn", tc.taken))
		})
	}
}
