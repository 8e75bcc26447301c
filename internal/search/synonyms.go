package search

import (
	"regexp"
	"strings"
	"sync"
)

// synonymTable maps colloquial, Hinglish and misspelled tokens to canonical
// search tokens. Substitution is whole-word only and applied in table order,
// so an earlier replacement can feed a later rule.
var synonymTable = []struct {
	from string
	to   string
}{
	// liquids
	{"tel", "oil"},
	{"paani", "coolant"},
	{"coolent", "coolant"},
	{"pani", "coolant"},
	{"grease", "lubricant"},
	{"petrol", "fuel"},
	{"diesel", "fuel"},

	// body parts
	{"sheesha", "mirror"},
	{"glass", "mirror"},
	{"batti", "light"},
	{"headlight", "light"},
	{"tail light", "back light"},
	{"dabba", "kit"},
	{"pahiya", "wheel"},
	{"tyre", "tire"},
	{"patti", "belt"},
	{"patla", "gasket"},

	// engine parts
	{"plug", "spark plug"},
	{"coil", "ignition"},
	{"injector", "fuel injector"},
	{"silencer", "exhaust"},
	{"radiator", "coolant"},
	{"ac", "air conditioner"},

	// actions / symptoms
	{"awaz", "sound"},
	{"khat khat", "suspension"},
	{"thanda", "ac"},
	{"garam", "heat"},
	{"start nahi", "battery"},
	{"jhatka", "plug"},
	{"dhuan", "smoke"},
	{"leak", "seal"},

	// common misspellings
	{"filtar", "filter"},
	{"filtter", "filter"},
	{"brack", "brake"},
	{"brek", "brake"},
	{"cushon", "cushion"},
	{"shocker", "shock absorber"},
	{"shockar", "shock absorber"},
	{"steerin", "steering"},
	{"clutc", "clutch"},
	{"geer", "gear"},

	// car names
	{"swiftt", "swift"},
	{"creata", "creta"},
	{"cretta", "creta"},
	{"tharr", "thar"},
	{"innova", "innova crysta"},
	{"fortunar", "fortuner"},
	{"baleeno", "baleno"},
}

var (
	synonymOnce sync.Once
	synonymRes  []*regexp.Regexp
)

func synonymPatterns() []*regexp.Regexp {
	synonymOnce.Do(func() {
		synonymRes = make([]*regexp.Regexp, len(synonymTable))
		for i, pair := range synonymTable {
			synonymRes[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(pair.from) + `\b`)
		}
	})
	return synonymRes
}

// Normalize lowercases the query and applies the synonym table with
// word-boundary substitution. Pure and deterministic; blank input yields "".
func Normalize(raw string) string {
	processed := strings.ToLower(strings.TrimSpace(raw))
	if processed == "" {
		return ""
	}

	for i, re := range synonymPatterns() {
		if re.MatchString(processed) {
			processed = re.ReplaceAllString(processed, synonymTable[i].to)
		}
	}
	return processed
}
