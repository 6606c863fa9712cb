// Package markets classifies raw bookmaker bets into a fixed market
// taxonomy, ranks competing bookmakers, and extracts canonical per-fixture
// market records from their published prices.
package markets

import (
	"regexp"
	"strings"
)

// MarketType tags one of the canonical markets a fixture can carry. The set
// is fixed; adding a market means adding a rule and a selector.
type MarketType string

const (
	MatchWinner     MarketType = "matchWinner"
	OverUnder       MarketType = "overUnder"
	BothTeamsScore  MarketType = "btts"
	Handicap        MarketType = "handicap"
	FirstHalfWinner MarketType = "firstHalfWinner"
)

var (
	matchWinnerRe = regexp.MustCompile(`(?i)^(match\s*winner|1x2|win\s*draw\s*win)$`)
	overUnderRe   = regexp.MustCompile(`(?i)over\s*/\s*under|totals?`)
	bttsRe        = regexp.MustCompile(`(?i)^both\s*teams\s*to\s*score$|^btts$`)
	asianHcpRe    = regexp.MustCompile(`(?i)^asian\s*handicap$`)
	handicapRe    = regexp.MustCompile(`(?i)^handicap`)
	firstHalfRe   = regexp.MustCompile(`(?i)^(1(st)?|first)\s*half\s*(winner|1x2)`)
)

// rule pairs a market type with the predicate recognizing bookmaker labels
// for it. Rules run in taxonomy order and the first match wins, so a label
// belongs to at most one market type.
type rule struct {
	market MarketType
	match  func(name string) bool
}

var rules = []rule{
	{MatchWinner, matchWinnerRe.MatchString},
	{OverUnder, overUnderRe.MatchString},
	{BothTeamsScore, bttsRe.MatchString},
	{Handicap, isMatchHandicap},
	{FirstHalfWinner, firstHalfRe.MatchString},
}

// isMatchHandicap accepts "Asian Handicap" and plain handicap labels while
// rejecting the corners and cards variants that share the prefix.
func isMatchHandicap(name string) bool {
	if asianHcpRe.MatchString(name) {
		return true
	}
	if !handicapRe.MatchString(name) {
		return false
	}
	lower := strings.ToLower(name)
	return !strings.Contains(lower, "corners") && !strings.Contains(lower, "cards")
}

// Classify maps a bookmaker's free-text market name to its canonical type.
// Unrecognized names are not an error; the bet simply carries no market.
func Classify(name string) (MarketType, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, r := range rules {
		if r.match(name) {
			return r.market, true
		}
	}
	return "", false
}
