package markets

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"oddsflow/models"
)

func ov(value, odd, handicap string) models.OddValue {
	return models.OddValue{
		Value:    models.FlexString(value),
		Odd:      models.FlexString(odd),
		Handicap: models.FlexString(handicap),
	}
}

func decEq(t *testing.T, got *decimal.Decimal, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("got nil, want %s", want)
	}
	w, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("parse %q: %v", want, err)
	}
	if !got.Equal(w) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		market MarketType
		ok     bool
	}{
		{"Match Winner", MatchWinner, true},
		{"1X2", MatchWinner, true},
		{"Win Draw Win", MatchWinner, true},
		{"  match winner  ", MatchWinner, true},
		{"Goals Over/Under", OverUnder, true},
		{"Over/Under", OverUnder, true},
		{"Totals", OverUnder, true},
		{"Total Goals", OverUnder, true},
		{"Both Teams To Score", BothTeamsScore, true},
		{"BTTS", BothTeamsScore, true},
		{"Asian Handicap", Handicap, true},
		{"Handicap", Handicap, true},
		{"Handicap Result", Handicap, true},
		{"Handicap Corners", "", false},
		{"Handicap Cards", "", false},
		{"Corners Handicap", "", false},
		{"1st Half Winner", FirstHalfWinner, true},
		{"First Half 1X2", FirstHalfWinner, true},
		{"1 Half Winner", FirstHalfWinner, true},
		{"Half Time Result", "", false},
		{"Correct Score", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market, ok := Classify(tt.name)
			if ok != tt.ok {
				t.Fatalf("Classify(%q) matched=%v, want %v", tt.name, ok, tt.ok)
			}
			if ok && market != tt.market {
				t.Errorf("Classify(%q) = %s, want %s", tt.name, market, tt.market)
			}
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// "Handicap Total" satisfies both the totals and the handicap rule; the
	// taxonomy order resolves it to the earlier one.
	market, ok := Classify("Handicap Total")
	if !ok || market != OverUnder {
		t.Errorf("got (%s, %v), want (%s, true)", market, ok, OverUnder)
	}
}

func TestRankerScore(t *testing.T) {
	r := NewRanker([]string{"Pinnacle", "bet365", "Betfair", "Betway", "William Hill", "Bwin"})

	tests := []struct {
		bookmaker string
		values    int
		want      int
	}{
		{"Pinnacle", 3, 803},
		{"Bet365", 10, 710}, // case-insensitive match on the preference list
		{"Bwin", 0, 300},
		{"SomeBook", 50, 150},
	}
	for _, tt := range tests {
		o := Offer{Bookmaker: tt.bookmaker, Values: make([]models.OddValue, tt.values)}
		if got := r.Score(o); got != tt.want {
			t.Errorf("Score(%s, %d values) = %d, want %d", tt.bookmaker, tt.values, got, tt.want)
		}
	}
}

func TestRankerBest(t *testing.T) {
	r := NewRanker([]string{"Pinnacle", "bet365"})

	t.Run("preference beats richness", func(t *testing.T) {
		offers := []Offer{
			{Bookmaker: "NoName", Values: make([]models.OddValue, 30)},
			{Bookmaker: "Pinnacle", Values: make([]models.OddValue, 3)},
		}
		best := r.Best(offers)
		if best == nil || best.Bookmaker != "Pinnacle" {
			t.Fatalf("got %+v, want Pinnacle", best)
		}
	})

	t.Run("richness breaks ties", func(t *testing.T) {
		offers := []Offer{
			{Bookmaker: "AlphaBook", Values: make([]models.OddValue, 2)},
			{Bookmaker: "BetaBook", Values: make([]models.OddValue, 5)},
		}
		best := r.Best(offers)
		if best == nil || best.Bookmaker != "BetaBook" {
			t.Fatalf("got %+v, want BetaBook", best)
		}
	})

	t.Run("equal scores keep the first", func(t *testing.T) {
		offers := []Offer{
			{Bookmaker: "AlphaBook", Values: make([]models.OddValue, 3)},
			{Bookmaker: "BetaBook", Values: make([]models.OddValue, 3)},
		}
		best := r.Best(offers)
		if best == nil || best.Bookmaker != "AlphaBook" {
			t.Fatalf("got %+v, want AlphaBook", best)
		}
	})

	t.Run("empty offers", func(t *testing.T) {
		if best := r.Best(nil); best != nil {
			t.Fatalf("got %+v, want nil", best)
		}
	})
}

func TestThreeWaySelector(t *testing.T) {
	t.Run("semantic labels", func(t *testing.T) {
		got := threeWay([]models.OddValue{
			ov("Home", "1.50", ""),
			ov("Draw", "3.20", ""),
			ov("Away", "6.00", ""),
		}, "Pinnacle")
		if got == nil {
			t.Fatal("expected a market")
		}
		decEq(t, got.Home, "1.50")
		decEq(t, got.Draw, "3.20")
		decEq(t, got.Away, "6.00")
		if got.Bookmaker != "Pinnacle" {
			t.Errorf("bookmaker = %q", got.Bookmaker)
		}
	})

	t.Run("numeric shorthand", func(t *testing.T) {
		got := threeWay([]models.OddValue{
			ov("1", "2.10", ""),
			ov("X", "3.40", ""),
			ov("2", "3.15", ""),
		}, "bet365")
		if got == nil {
			t.Fatal("expected a market")
		}
		decEq(t, got.Home, "2.10")
		decEq(t, got.Draw, "3.40")
		decEq(t, got.Away, "3.15")
	})

	t.Run("missing leg stays absent", func(t *testing.T) {
		got := threeWay([]models.OddValue{ov("Home", "1.95", "")}, "Betway")
		if got == nil {
			t.Fatal("expected a market")
		}
		if got.Draw != nil || got.Away != nil {
			t.Errorf("absent legs should be nil, got %+v", got)
		}
	})

	t.Run("unusable price is skipped", func(t *testing.T) {
		got := threeWay([]models.OddValue{
			ov("Home", "0", ""),
			ov("Home", "1.85", ""),
		}, "Bwin")
		if got == nil {
			t.Fatal("expected a market")
		}
		decEq(t, got.Home, "1.85")
	})

	t.Run("no usable leg yields no market", func(t *testing.T) {
		got := threeWay([]models.OddValue{
			ov("Home", "", ""),
			ov("Draw", "-2.0", ""),
			ov("Away", "n/a", ""),
		}, "Bwin")
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestOverUnderSelector(t *testing.T) {
	target := decimal.NewFromFloat(2.5)

	t.Run("exact target line", func(t *testing.T) {
		got := overUnder([]models.OddValue{
			ov("Over 2.5", "1.90", ""),
			ov("Under 2.5", "1.90", ""),
		}, "Pinnacle", target, "2.5")
		if got == nil {
			t.Fatal("expected a market")
		}
		if got.Line != "2.5" {
			t.Errorf("line = %q, want 2.5", got.Line)
		}
		decEq(t, got.Over, "1.90")
		decEq(t, got.Under, "1.90")
	})

	t.Run("line in handicap field", func(t *testing.T) {
		got := overUnder([]models.OddValue{
			ov("Over", "1.85", "2.5"),
			ov("Under", "1.95", "2.5"),
		}, "bet365", target, "2.5")
		if got == nil {
			t.Fatal("expected a market")
		}
		if got.Line != "2.5" {
			t.Errorf("line = %q, want 2.5", got.Line)
		}
	})

	t.Run("nearest line per direction", func(t *testing.T) {
		// No 2.5 published. Among overs 2.25 is nearest; among unders 2.0
		// and 3.0 tie, so the first encountered wins.
		got := overUnder([]models.OddValue{
			ov("Over 2.0", "1.50", ""),
			ov("Under 2.0", "2.40", ""),
			ov("Over 3.0", "2.20", ""),
			ov("Under 3.0", "1.60", ""),
			ov("Over 2.25", "1.70", ""),
		}, "Betfair", target, "2.5")
		if got == nil {
			t.Fatal("expected a market")
		}
		if got.Line != "2.25" {
			t.Errorf("line = %q, want 2.25", got.Line)
		}
		decEq(t, got.Over, "1.70")
		decEq(t, got.Under, "2.40")
	})

	t.Run("line from under pick when over has none", func(t *testing.T) {
		got := overUnder([]models.OddValue{
			ov("Under 2.5", "1.80", ""),
		}, "Betway", target, "2.5")
		if got == nil {
			t.Fatal("expected a market")
		}
		if got.Line != "2.5" {
			t.Errorf("line = %q, want 2.5", got.Line)
		}
		if got.Over != nil {
			t.Errorf("over should be absent, got %s", got.Over)
		}
		decEq(t, got.Under, "1.80")
	})

	t.Run("no directional outcomes", func(t *testing.T) {
		got := overUnder([]models.OddValue{ov("Yes", "1.70", "")}, "Bwin", target, "2.5")
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestBothTeamsScoreSelector(t *testing.T) {
	got := bothTeamsScore([]models.OddValue{
		ov("Yes", "1.72", ""),
		ov("No", "2.05", ""),
	}, "William Hill")
	if got == nil {
		t.Fatal("expected a market")
	}
	decEq(t, got.Yes, "1.72")
	decEq(t, got.No, "2.05")

	if m := bothTeamsScore([]models.OddValue{ov("Maybe", "1.50", "")}, "Bwin"); m != nil {
		t.Errorf("expected nil for unrecognized labels, got %+v", m)
	}
}

func TestFixedHandicapSelector(t *testing.T) {
	t.Run("side labels with handicap field", func(t *testing.T) {
		got := fixedHandicap([]models.OddValue{
			ov("Home", "2.10", "-1"),
			ov("Away", "1.75", "+1"),
		}, "Pinnacle")
		if got == nil {
			t.Fatal("expected a market")
		}
		decEq(t, got.HomeMinus1, "2.10")
		decEq(t, got.AwayPlus1, "1.75")
	})

	t.Run("exact combined labels", func(t *testing.T) {
		got := fixedHandicap([]models.OddValue{
			ov("Home -1", "2.05", ""),
			ov("Away +1", "1.80", ""),
		}, "bet365")
		if got == nil {
			t.Fatal("expected a market")
		}
		decEq(t, got.HomeMinus1, "2.05")
		decEq(t, got.AwayPlus1, "1.80")
	})

	t.Run("other lines are ignored", func(t *testing.T) {
		got := fixedHandicap([]models.OddValue{
			ov("Home", "1.95", "-1.5"),
			ov("Away", "1.85", "+1"),
		}, "Betfair")
		if got == nil {
			t.Fatal("expected a market")
		}
		if got.HomeMinus1 != nil {
			t.Errorf("home at -1.5 should not fill the -1 leg, got %s", got.HomeMinus1)
		}
		decEq(t, got.AwayPlus1, "1.85")
	})

	t.Run("home needs the minus line", func(t *testing.T) {
		got := fixedHandicap([]models.OddValue{
			ov("Home", "2.00", "1"),
		}, "Betway")
		if got != nil {
			t.Errorf("home at +1 should not produce a market, got %+v", got)
		}
	})
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(Config{
		PreferredBookmakers: []string{"Pinnacle", "bet365", "Betfair", "Betway", "William Hill", "Bwin"},
		OverUnderTarget:     "2.5",
	})
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	return e
}

func TestExtractEndToEnd(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract([]models.Bookmaker{{
		ID:   4,
		Name: "Pinnacle",
		Bets: []models.Bet{
			{Name: "Match Winner", Values: []models.OddValue{
				ov("Home", "1.50", ""),
				ov("Draw", "3.20", ""),
				ov("Away", "6.00", ""),
			}},
			{Name: "Over/Under", Values: []models.OddValue{
				ov("Over 2.5", "1.90", ""),
				ov("Under 2.5", "1.90", ""),
			}},
		},
	}})

	if got.MatchWinner == nil || got.OverUnder == nil {
		t.Fatalf("expected matchWinner and overUnder, got %+v", got)
	}
	decEq(t, got.MatchWinner.Home, "1.50")
	decEq(t, got.MatchWinner.Draw, "3.20")
	decEq(t, got.MatchWinner.Away, "6.00")
	if got.MatchWinner.Bookmaker != "Pinnacle" {
		t.Errorf("matchWinner bookmaker = %q", got.MatchWinner.Bookmaker)
	}
	if got.OverUnder.Line != "2.5" {
		t.Errorf("overUnder line = %q", got.OverUnder.Line)
	}
	decEq(t, got.OverUnder.Over, "1.90")
	decEq(t, got.OverUnder.Under, "1.90")

	out, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal markets: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(out, &keys); err != nil {
		t.Fatalf("unmarshal markets: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected exactly two market keys, got %v", keys)
	}
}

func TestExtractPrefersListedBookmaker(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract([]models.Bookmaker{
		{Name: "NoName", Bets: []models.Bet{{Name: "1X2", Values: []models.OddValue{
			ov("Home", "1.40", ""), ov("Draw", "4.00", ""), ov("Away", "7.50", ""),
			ov("Home or Draw", "1.10", ""), ov("Draw or Away", "2.40", ""), ov("Anything", "1.01", ""),
		}}}},
		{Name: "Bet365", Bets: []models.Bet{{Name: "Match Winner", Values: []models.OddValue{
			ov("Home", "1.45", ""), ov("Draw", "3.90", ""), ov("Away", "7.00", ""),
		}}}},
	})
	if got.MatchWinner == nil {
		t.Fatal("expected a matchWinner market")
	}
	if got.MatchWinner.Bookmaker != "Bet365" {
		t.Errorf("listed bookmaker should win over a richer unlisted one, got %q", got.MatchWinner.Bookmaker)
	}
	decEq(t, got.MatchWinner.Home, "1.45")
}

func TestExtractFirstBetPerBookmakerWins(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract([]models.Bookmaker{{
		Name: "Pinnacle",
		Bets: []models.Bet{
			{Name: "Goals Over/Under", Values: []models.OddValue{
				ov("Over 2.5", "1.80", ""), ov("Under 2.5", "2.00", ""),
			}},
			{Name: "Over/Under Extra", Values: []models.OddValue{
				ov("Over 2.5", "9.99", ""), ov("Under 2.5", "9.99", ""),
			}},
		},
	}})
	if got.OverUnder == nil {
		t.Fatal("expected an overUnder market")
	}
	decEq(t, got.OverUnder.Over, "1.80")
}

func TestExtractFirstHalfUsesThreeWay(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract([]models.Bookmaker{{
		Name: "Betfair",
		Bets: []models.Bet{{Name: "1st Half Winner", Values: []models.OddValue{
			ov("1", "2.60", ""), ov("X", "2.10", ""), ov("2", "3.80", ""),
		}}},
	}})
	if got.FirstHalfWinner == nil {
		t.Fatal("expected a firstHalfWinner market")
	}
	if got.MatchWinner != nil {
		t.Errorf("first half bet must not fill matchWinner, got %+v", got.MatchWinner)
	}
	decEq(t, got.FirstHalfWinner.Home, "2.60")
	decEq(t, got.FirstHalfWinner.Draw, "2.10")
	decEq(t, got.FirstHalfWinner.Away, "3.80")
}

func TestExtractNoBookmakers(t *testing.T) {
	e := newTestExtractor(t)
	if got := e.Extract(nil); !got.Empty() {
		t.Errorf("expected empty markets, got %+v", got)
	}
}

func TestNewExtractorRejectsBadTarget(t *testing.T) {
	if _, err := NewExtractor(Config{OverUnderTarget: "two and a half"}); err == nil {
		t.Fatal("expected error for unparsable target line")
	}
}
