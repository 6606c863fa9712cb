package markets

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"oddsflow/models"
)

var (
	lineTokenRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	homeExactRe = regexp.MustCompile(`(?i)^home\s*-1(?:\.0)?$`)
	awayExactRe = regexp.MustCompile(`(?i)^away\s*\+1(?:\.0)?$`)
)

var (
	minusOne = decimal.NewFromInt(-1)
	plusOne  = decimal.NewFromInt(1)
)

// label returns an outcome's display text lowered and trimmed for matching.
func label(v models.OddValue) string {
	return strings.ToLower(strings.TrimSpace(v.Value.String()))
}

// price parses an outcome's odd and returns it only when strictly positive.
// Anything else counts as no value, never as a zero price.
func price(v models.OddValue) *decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v.Odd.String()))
	if err != nil || d.Sign() <= 0 {
		return nil
	}
	return &d
}

// lineText returns the raw text carrying an outcome's line: the dedicated
// handicap field when present, else the display label.
func lineText(v models.OddValue) string {
	if h := strings.TrimSpace(v.Handicap.String()); h != "" {
		return h
	}
	return v.Value.String()
}

// lineString extracts the printable line for an outcome: the handicap field
// verbatim, else the first numeric token of the label.
func lineString(v models.OddValue) string {
	if h := strings.TrimSpace(v.Handicap.String()); h != "" {
		return h
	}
	return lineTokenRe.FindString(v.Value.String())
}

// parseLine extracts an outcome's numeric line as the first signed decimal
// token of its line text. Unparsable text yields no line, never zero.
func parseLine(v models.OddValue) *decimal.Decimal {
	token := lineTokenRe.FindString(lineText(v))
	if token == "" {
		return nil
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return nil
	}
	return &d
}

// pickPriceBy returns the price of the first outcome that satisfies match
// and carries a usable odd.
func pickPriceBy(values []models.OddValue, match func(models.OddValue) bool) *decimal.Decimal {
	for _, v := range values {
		if !match(v) {
			continue
		}
		if p := price(v); p != nil {
			return p
		}
	}
	return nil
}

func pickPrice(values []models.OddValue, match func(label string) bool) *decimal.Decimal {
	return pickPriceBy(values, func(v models.OddValue) bool { return match(label(v)) })
}

func isHome(l string) bool { return l == "home" || l == "1" }
func isDraw(l string) bool { return l == "x" || strings.Contains(l, "draw") }
func isAway(l string) bool { return l == "away" || l == "2" }

// threeWay extracts home/draw/away prices from a 1X2 style outcome list,
// accepting the semantic words or their numeric shorthand. At least one leg
// must resolve for the market to be emitted.
func threeWay(values []models.OddValue, bookmaker string) *models.ThreeWayOdds {
	home := pickPrice(values, isHome)
	draw := pickPrice(values, isDraw)
	away := pickPrice(values, isAway)
	if home == nil && draw == nil && away == nil {
		return nil
	}
	return &models.ThreeWayOdds{Home: home, Draw: draw, Away: away, Bookmaker: bookmaker}
}

// bothTeamsScore extracts the yes/no pair.
func bothTeamsScore(values []models.OddValue, bookmaker string) *models.BTTSOdds {
	yes := pickPrice(values, func(l string) bool { return l == "yes" })
	no := pickPrice(values, func(l string) bool { return l == "no" })
	if yes == nil && no == nil {
		return nil
	}
	return &models.BTTSOdds{Yes: yes, No: no, Bookmaker: bookmaker}
}

// handicapLeg matches an outcome for one side of the fixed handicap line:
// either the side word combined with a line parsing to exactly want, or the
// exact combined label ("Home -1", "Away +1").
func handicapLeg(side string, want decimal.Decimal, exact *regexp.Regexp) func(models.OddValue) bool {
	return func(v models.OddValue) bool {
		raw := strings.TrimSpace(v.Value.String())
		if exact.MatchString(raw) {
			return true
		}
		if !strings.Contains(strings.ToLower(raw), side) {
			return false
		}
		line := parseLine(v)
		return line != nil && line.Equal(want)
	}
}

// fixedHandicap extracts the single fixed line, home at -1 and away at +1.
// This is not a general Asian handicap sweep; other lines are ignored.
func fixedHandicap(values []models.OddValue, bookmaker string) *models.HandicapOdds {
	home := pickPriceBy(values, handicapLeg("home", minusOne, homeExactRe))
	away := pickPriceBy(values, handicapLeg("away", plusOne, awayExactRe))
	if home == nil && away == nil {
		return nil
	}
	return &models.HandicapOdds{HomeMinus1: home, AwayPlus1: away, Bookmaker: bookmaker}
}

func filterPrefix(values []models.OddValue, prefix string) []models.OddValue {
	var out []models.OddValue
	for _, v := range values {
		if strings.HasPrefix(label(v), prefix) {
			out = append(out, v)
		}
	}
	return out
}

// pickLine returns the first outcome whose line text contains the literal
// target, else the outcome whose parsed line is nearest the target. Ties on
// distance keep the first encountered.
func pickLine(values []models.OddValue, target decimal.Decimal, literal string) *models.OddValue {
	for i := range values {
		if strings.Contains(lineText(values[i]), literal) {
			return &values[i]
		}
	}
	var best *models.OddValue
	var bestDist decimal.Decimal
	for i := range values {
		line := parseLine(values[i])
		if line == nil {
			continue
		}
		dist := line.Sub(target).Abs()
		if best == nil || dist.LessThan(bestDist) {
			best = &values[i]
			bestDist = dist
		}
	}
	return best
}

// overUnder selects the totals pair for the target line: outcomes carrying
// the literal target first, else the nearest line in the same direction.
// The emitted line text comes from the over pick, then the under pick, then
// the target itself.
func overUnder(values []models.OddValue, bookmaker string, target decimal.Decimal, literal string) *models.OverUnderOdds {
	overPick := pickLine(filterPrefix(values, "over"), target, literal)
	underPick := pickLine(filterPrefix(values, "under"), target, literal)
	if overPick == nil && underPick == nil {
		return nil
	}

	var over, under *decimal.Decimal
	if overPick != nil {
		over = price(*overPick)
	}
	if underPick != nil {
		under = price(*underPick)
	}
	if over == nil && under == nil {
		return nil
	}

	line := ""
	if overPick != nil {
		line = lineString(*overPick)
	}
	if line == "" && underPick != nil {
		line = lineString(*underPick)
	}
	if line == "" {
		line = literal
	}
	return &models.OverUnderOdds{Line: line, Over: over, Under: under, Bookmaker: bookmaker}
}
