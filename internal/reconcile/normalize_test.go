package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_KnownTeams(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"New York Yankees", "NYY"},
		{"NY Yankees", "NYY"},
		{"Los Angeles Dodgers", "LAD"},
		{"LA Dodgers", "LAD"},
		{"la dodgers", "LAD"},
		{"  LOS ANGELES   DODGERS  ", "LAD"},
		{"LA Angels", "LAA"},
		{"Arizona D-Backs", "ARI"},
		{"St. Louis Cardinals", "STL"},
		{"Washington", "WAS"},
		{"Boston Red Sox", "BOS"},
		{"Chicago White Sox", "CHW"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestNormalize_ScoreboardAbbreviations(t *testing.T) {
	// Scoreboard abbreviations that differ from the canonical codes must
	// land on the same code as the odds feeds' full names, or the join
	// silently loses every game for that team.
	cases := []struct {
		abbrev   string
		fullName string
	}{
		{"WSH", "Washington Nationals"},
		{"CWS", "Chicago White Sox"},
		{"ATH", "Oakland Athletics"},
		{"AZ", "Arizona Diamondbacks"},
	}

	for _, tc := range cases {
		assert.Equal(t, Normalize(tc.fullName), Normalize(tc.abbrev),
			"%q and %q must normalize to the same code", tc.abbrev, tc.fullName)
	}
}

func TestNormalize_SameCodeAcrossVariants(t *testing.T) {
	assert.Equal(t, Normalize("LOS ANGELES DODGERS"), Normalize("LA Dodgers"))
	assert.Equal(t, Normalize("NY Mets"), Normalize("New York Mets"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"New York Yankees",
		"LA Dodgers",
		"NYY",
		"Some Unknown Ballclub",
		"Springfield Isotopes",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize should be idempotent for %q", in)
	}
}

func TestNormalize_HeuristicFallback(t *testing.T) {
	// Unknown names degrade to last token, uppercased, truncated.
	assert.Equal(t, "ISO", Normalize("Springfield Isotopes"))
	assert.Equal(t, "ABC", Normalize("abc"))
	assert.Equal(t, "", Normalize("   "))
}
