// Package team resolves canonical team identity from upstream records.
// Schedule records go through Resolve and odds events through
// FromMarketName, which builds a record and calls Resolve, so both sides
// share one identity and one Key.
package team

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/model"
)

// Placeholder is the display name used when nothing resolves.
const Placeholder = "TBD"

const logoURL = "https://cdn.nba.com/logos/nba/%s/global/L/logo.svg"

var (
	idRule   = extract.NewRule("id", "id", "teamId", "team_id", "teamID")
	abbrRule = extract.NewRule("abbreviation", "triCode", "teamTricode", "tricode", "abbreviation", "abbr", "teamAbbreviation")
	nameRule = extract.NewRule("displayName", "displayName", "fullName", "full_name", "name", "teamName")
	cityRule = extract.NewRule("city", "teamCity", "city", "location")
	logoRule = extract.NewRule("logo", "logo", "logoRef")
)

// Resolve builds a canonical Team. It never fails: missing fields degrade
// to empty values and finally to the placeholder name.
func Resolve(r extract.Record) model.Team {
	if r == nil {
		return model.Team{DisplayName: Placeholder}
	}
	id, _ := idRule.String(r)
	abbr, _ := abbrRule.String(r)
	abbr = strings.ToUpper(abbr)
	name, _ := nameRule.String(r)

	// NBA CDN records carry city and nickname separately.
	if city, _ := cityRule.String(r); city != "" && name != "" && !strings.HasPrefix(name, city) {
		name = city + " " + name
	}
	if name == "" {
		name = FullName(abbr)
	}
	if name == "" {
		name = abbr
	}
	if name == "" {
		name = Placeholder
	}
	t := model.Team{ID: id, Abbreviation: abbr, DisplayName: name}
	if logo, _ := logoRule.String(r); logo != "" {
		t.LogoRef = logo
	} else if isNBAID(id) {
		t.LogoRef = fmt.Sprintf(logoURL, id)
	}
	return t
}

// MarketName is the name odds providers use for the team: the full market
// name when the tricode is known, else the display name.
func MarketName(t model.Team) string {
	if full := FullName(t.Abbreviation); full != "" {
		return full
	}
	return t.DisplayName
}

// FullName maps a tricode to the full market name, empty when unknown.
func FullName(tricode string) string {
	return tricodeToName[aliases(strings.ToUpper(strings.TrimSpace(tricode)))]
}

// Canonical maps provider short codes such as "GS" or "UTAH" to the league
// tricode. Unknown codes are returned uppercased.
func Canonical(code string) string {
	return aliases(strings.ToUpper(strings.TrimSpace(code)))
}

// Tricode maps a market name back to its tricode, empty when unknown.
// Spelling variants that normalize alike ("L.A. Lakers", "LA Lakers")
// resolve to the same code.
func Tricode(name string) string {
	return nameToTricode[NormalizeName(name)]
}

// FromMarketName resolves the team an odds provider names by its full
// market name.
func FromMarketName(name string) model.Team {
	r := extract.Record{"displayName": name}
	if code := Tricode(name); code != "" {
		r["abbreviation"] = code
	}
	return Resolve(r)
}

// NormalizeName lowercases a team name and strips punctuation so that
// "L.A. Lakers" and "la lakers" compare equal.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// NameKey is the identity key for a bare team name: the tricode when the
// name is a known franchise, else the normalized name.
func NameKey(name string) string {
	if code := Tricode(name); code != "" {
		return code
	}
	return NormalizeName(name)
}

// Key is the identity key for a resolved team. Schedule teams known by
// tricode and odds teams known by name share it.
func Key(t model.Team) string {
	if code := Canonical(t.Abbreviation); FullName(code) != "" {
		return code
	}
	return NameKey(t.DisplayName)
}

// NBA league team ids are ten digit numbers starting 16106127.
func isNBAID(id string) bool {
	return len(id) == 10 && strings.HasPrefix(id, "16106127")
}

// ESPN uses short codes for a few franchises.
func aliases(code string) string {
	switch code {
	case "GS":
		return "GSW"
	case "NO":
		return "NOP"
	case "NY":
		return "NYK"
	case "SA":
		return "SAS"
	case "UTAH":
		return "UTA"
	case "WSH":
		return "WAS"
	case "PHO":
		return "PHX"
	case "BRK":
		return "BKN"
	}
	return code
}

var tricodeToName = map[string]string{
	"ATL": "Atlanta Hawks",
	"BOS": "Boston Celtics",
	"BKN": "Brooklyn Nets",
	"CHA": "Charlotte Hornets",
	"CHI": "Chicago Bulls",
	"CLE": "Cleveland Cavaliers",
	"DAL": "Dallas Mavericks",
	"DEN": "Denver Nuggets",
	"DET": "Detroit Pistons",
	"GSW": "Golden State Warriors",
	"HOU": "Houston Rockets",
	"IND": "Indiana Pacers",
	"LAC": "Los Angeles Clippers",
	"LAL": "Los Angeles Lakers",
	"MEM": "Memphis Grizzlies",
	"MIA": "Miami Heat",
	"MIL": "Milwaukee Bucks",
	"MIN": "Minnesota Timberwolves",
	"NOP": "New Orleans Pelicans",
	"NYK": "New York Knicks",
	"OKC": "Oklahoma City Thunder",
	"ORL": "Orlando Magic",
	"PHI": "Philadelphia 76ers",
	"PHX": "Phoenix Suns",
	"POR": "Portland Trail Blazers",
	"SAC": "Sacramento Kings",
	"SAS": "San Antonio Spurs",
	"TOR": "Toronto Raptors",
	"UTA": "Utah Jazz",
	"WAS": "Washington Wizards",
}

// Short forms seen in schedule and odds feeds.
var nameAliases = map[string]string{
	"LA Clippers":         "LAC",
	"LA Lakers":           "LAL",
	"Philadelphia Sixers": "PHI",
}

var nameToTricode = func() map[string]string {
	m := make(map[string]string, len(tricodeToName))
	for code, name := range tricodeToName {
		m[NormalizeName(name)] = code
	}
	for name, code := range nameAliases {
		m[NormalizeName(name)] = code
	}
	return m
}()
