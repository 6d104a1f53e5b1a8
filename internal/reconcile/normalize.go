package reconcile

import (
	"sort"
	"strings"
)

// teamTable maps known MLB team names (and common shorthand used by the
// feeds) to canonical codes. Matching is by substring containment against
// the cleaned input, most specific entries first.
var teamTable = map[string]string{
	"ARIZONA DIAMONDBACKS":  "ARI",
	"DIAMONDBACKS":          "ARI",
	"D-BACKS":               "ARI",
	"ATLANTA BRAVES":        "ATL",
	"BRAVES":                "ATL",
	"BALTIMORE ORIOLES":     "BAL",
	"ORIOLES":               "BAL",
	"BOSTON RED SOX":        "BOS",
	"RED SOX":               "BOS",
	"CHICAGO CUBS":          "CHC",
	"CUBS":                  "CHC",
	"CHICAGO WHITE SOX":     "CHW",
	"WHITE SOX":             "CHW",
	"CINCINNATI REDS":       "CIN",
	"REDS":                  "CIN",
	"CLEVELAND GUARDIANS":   "CLE",
	"GUARDIANS":             "CLE",
	"COLORADO ROCKIES":      "COL",
	"ROCKIES":               "COL",
	"DETROIT TIGERS":        "DET",
	"TIGERS":                "DET",
	"HOUSTON ASTROS":        "HOU",
	"ASTROS":                "HOU",
	"KANSAS CITY ROYALS":    "KC",
	"ROYALS":                "KC",
	"LOS ANGELES ANGELS":    "LAA",
	"LA ANGELS":             "LAA",
	"ANGELS":                "LAA",
	"LOS ANGELES DODGERS":   "LAD",
	"LA DODGERS":            "LAD",
	"DODGERS":               "LAD",
	"MIAMI MARLINS":         "MIA",
	"MARLINS":               "MIA",
	"MILWAUKEE BREWERS":     "MIL",
	"BREWERS":               "MIL",
	"MINNESOTA TWINS":       "MIN",
	"TWINS":                 "MIN",
	"NEW YORK METS":         "NYM",
	"NY METS":               "NYM",
	"METS":                  "NYM",
	"NEW YORK YANKEES":      "NYY",
	"NY YANKEES":            "NYY",
	"YANKEES":               "NYY",
	"OAKLAND ATHLETICS":     "OAK",
	"ATHLETICS":             "OAK",
	"PHILADELPHIA PHILLIES": "PHI",
	"PHILLIES":              "PHI",
	"PITTSBURGH PIRATES":    "PIT",
	"PIRATES":               "PIT",
	"SAN DIEGO PADRES":      "SD",
	"PADRES":                "SD",
	"SEATTLE MARINERS":      "SEA",
	"MARINERS":              "SEA",
	"SAN FRANCISCO GIANTS":  "SF",
	"SF GIANTS":             "SF",
	"GIANTS":                "SF",
	"ST. LOUIS CARDINALS":   "STL",
	"ST LOUIS CARDINALS":    "STL",
	"CARDINALS":             "STL",
	"TAMPA BAY RAYS":        "TB",
	"RAYS":                  "TB",
	"TEXAS RANGERS":         "TEX",
	"RANGERS":               "TEX",
	"TORONTO BLUE JAYS":     "TOR",
	"BLUE JAYS":             "TOR",
	"WASHINGTON NATIONALS":  "WAS",
	"NATIONALS":             "WAS",
	"WASHINGTON":            "WAS",

	// Scoreboard abbreviations that differ from the canonical codes. Without
	// these the heuristic passes them through verbatim and the join against
	// the full-name odds feeds never matches.
	"WSH": "WAS",
	"CWS": "CHW",
	"ATH": "OAK",
	"AZ":  "ARI",
}

// teamNames holds the table keys sorted longest-first so specific entries
// ("LA ANGELS") win over their substrings ("ANGELS").
var teamNames = func() []string {
	names := make([]string, 0, len(teamTable))
	for name := range teamTable {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// fallbackCodeLen bounds the heuristic code for names the table misses.
const fallbackCodeLen = 3

// Normalize maps a free-text team name from any feed to a canonical code.
// Pure and total: unmappable input degrades to a heuristic code (last token,
// uppercased, truncated) instead of failing. Idempotent, since canonical
// codes fall through the table untouched.
func Normalize(raw string) string {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if cleaned == "" {
		return ""
	}

	for _, name := range teamNames {
		if strings.Contains(cleaned, name) {
			return teamTable[name]
		}
	}

	tokens := strings.Fields(cleaned)
	last := tokens[len(tokens)-1]
	if len(last) > fallbackCodeLen {
		last = last[:fallbackCodeLen]
	}
	return last
}
