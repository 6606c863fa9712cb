package markets

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"oddsflow/models"
)

// Config fixes the extraction policy: the ordered bookmaker preference list
// and the totals line to aim for. It is passed in explicitly so alternate
// policies are testable without touching globals.
type Config struct {
	PreferredBookmakers []string
	OverUnderTarget     string
}

// Extractor turns one fixture's raw bookmaker tree into its canonical
// markets record. It holds no mutable state and is safe to reuse across
// fixtures.
type Extractor struct {
	ranker  *Ranker
	target  decimal.Decimal
	literal string
}

// NewExtractor validates the configured target line and builds an extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	literal := strings.TrimSpace(cfg.OverUnderTarget)
	if literal == "" {
		literal = "2.5"
	}
	target, err := decimal.NewFromString(literal)
	if err != nil {
		return nil, fmt.Errorf("invalid over/under target line %q: %w", cfg.OverUnderTarget, err)
	}
	return &Extractor{ranker: NewRanker(cfg.PreferredBookmakers), target: target, literal: literal}, nil
}

// taxonomyOrder drives extraction so output is deterministic regardless of
// map iteration order.
var taxonomyOrder = []MarketType{MatchWinner, OverUnder, BothTeamsScore, Handicap, FirstHalfWinner}

// Extract classifies every bet, ranks the bookmakers offering each market
// type independently, and runs the type's selector on the winner's values.
// A bookmaker contributes at most its first matching bet per market type, so
// a different bookmaker may win each of the five markets.
func (e *Extractor) Extract(bookmakers []models.Bookmaker) models.Markets {
	offers := make(map[MarketType][]Offer, len(taxonomyOrder))
	for _, bm := range bookmakers {
		seen := make(map[MarketType]bool, len(taxonomyOrder))
		for _, bet := range bm.Bets {
			mt, ok := Classify(bet.Name)
			if !ok || seen[mt] {
				continue
			}
			seen[mt] = true
			offers[mt] = append(offers[mt], Offer{Bookmaker: bm.Name, Values: bet.Values})
		}
	}

	var out models.Markets
	for _, mt := range taxonomyOrder {
		best := e.ranker.Best(offers[mt])
		if best == nil {
			continue
		}
		switch mt {
		case MatchWinner:
			out.MatchWinner = threeWay(best.Values, best.Bookmaker)
		case OverUnder:
			out.OverUnder = overUnder(best.Values, best.Bookmaker, e.target, e.literal)
		case BothTeamsScore:
			out.BTTS = bothTeamsScore(best.Values, best.Bookmaker)
		case Handicap:
			out.Handicap = fixedHandicap(best.Values, best.Bookmaker)
		case FirstHalfWinner:
			out.FirstHalfWinner = threeWay(best.Values, best.Bookmaker)
		}
	}
	return out
}
