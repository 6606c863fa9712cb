package models

import "github.com/shopspring/decimal"

func init() {
	// Odds serialize as JSON numbers, not quoted strings. Decoding accepts
	// both, so archives round-trip through decimal values without loss.
	decimal.MarshalJSONWithoutQuotes = true
}

// ThreeWayOdds carries home/draw/away prices from a single bookmaker. A nil
// leg means the bookmaker published no usable price for that outcome and
// serializes as null, never as a zero placeholder.
type ThreeWayOdds struct {
	Home      *decimal.Decimal `json:"home"`
	Draw      *decimal.Decimal `json:"draw"`
	Away      *decimal.Decimal `json:"away"`
	Bookmaker string           `json:"bookmaker"`
}

// OverUnderOdds carries the selected totals line and its prices. Line keeps
// the upstream text form (for example "2.5") so unusual lines survive
// exactly as published.
type OverUnderOdds struct {
	Line      string           `json:"line"`
	Over      *decimal.Decimal `json:"over"`
	Under     *decimal.Decimal `json:"under"`
	Bookmaker string           `json:"bookmaker"`
}

// BTTSOdds carries both-teams-to-score prices.
type BTTSOdds struct {
	Yes       *decimal.Decimal `json:"yes"`
	No        *decimal.Decimal `json:"no"`
	Bookmaker string           `json:"bookmaker"`
}

// HandicapOdds carries the fixed-line handicap legs (home at -1, away at +1).
type HandicapOdds struct {
	HomeMinus1 *decimal.Decimal `json:"homeMinus1"`
	AwayPlus1  *decimal.Decimal `json:"awayPlus1"`
	Bookmaker  string           `json:"bookmaker"`
}

// Markets is the sparse per-fixture market map: one optional typed slot per
// canonical market type. An absent slot means no bookmaker offered a usable
// match for that type; a fixture with no markets marshals as {}.
type Markets struct {
	MatchWinner     *ThreeWayOdds  `json:"matchWinner,omitempty"`
	OverUnder       *OverUnderOdds `json:"overUnder,omitempty"`
	BTTS            *BTTSOdds      `json:"btts,omitempty"`
	Handicap        *HandicapOdds  `json:"handicap,omitempty"`
	FirstHalfWinner *ThreeWayOdds  `json:"firstHalfWinner,omitempty"`
}

// Merge overlays the populated slots of other onto m. When the same fixture
// appears in more than one odds response the later response wins per market
// type; empty slots never erase earlier data.
func (m *Markets) Merge(other Markets) {
	if other.MatchWinner != nil {
		m.MatchWinner = other.MatchWinner
	}
	if other.OverUnder != nil {
		m.OverUnder = other.OverUnder
	}
	if other.BTTS != nil {
		m.BTTS = other.BTTS
	}
	if other.Handicap != nil {
		m.Handicap = other.Handicap
	}
	if other.FirstHalfWinner != nil {
		m.FirstHalfWinner = other.FirstHalfWinner
	}
}

// Empty reports whether no market slot is populated.
func (m Markets) Empty() bool {
	return m == Markets{}
}

// FixtureRecord is one fixture with its canonical markets. Date is the
// kickoff rendered in the collector's timezone ("2006-01-02 15:04:05 -0700"),
// or the raw upstream value when it cannot be parsed.
type FixtureRecord struct {
	FixtureID int64   `json:"fixtureId"`
	Date      string  `json:"date"`
	Status    string  `json:"status"`
	LeagueID  int64   `json:"leagueId"`
	League    string  `json:"league"`
	Home      string  `json:"home"`
	Away      string  `json:"away"`
	Markets   Markets `json:"markets"`
}

// DailySnapshot is the day's aggregated document, immutable once written.
// Count always equals len(Items); Items is sorted by kickoff, league id and
// fixture id and is never null in the serialized form.
type DailySnapshot struct {
	Date  string          `json:"date"`
	Count int             `json:"count"`
	Items []FixtureRecord `json:"items"`
}

// RunMeta describes what a collector run persisted and pruned.
type RunMeta struct {
	SavedGzip     string `json:"saved_gzip"`
	RemovedCount  int    `json:"removed_count"`
	RetentionDays int    `json:"retention_days"`
	OutDir        string `json:"out_dir"`
}

// RunSummary is the machine readable document a run writes to stdout.
type RunSummary struct {
	Meta     RunMeta        `json:"meta"`
	Snapshot *DailySnapshot `json:"snapshot"`
}
