package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes a JSON string, number or null into plain text. The
// upstream API is inconsistent about quoting value and handicap fields, so
// both forms must land in the same shape.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("value %s is neither string nor number", data)
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// Paging reports the API's pagination state for one request.
type Paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// FixturesEnvelope wraps /fixtures responses. Errors is kept raw because the
// API switches between an empty array and an object of messages.
type FixturesEnvelope struct {
	Get      string          `json:"get"`
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Paging   Paging          `json:"paging"`
	Response []FixtureItem   `json:"response"`
}

// FixtureItem is one scheduled fixture as published by /fixtures.
type FixtureItem struct {
	Fixture FixtureCore `json:"fixture"`
	League  LeagueInfo  `json:"league"`
	Teams   TeamPair    `json:"teams"`
}

type FixtureCore struct {
	ID     int64         `json:"id"`
	Date   string        `json:"date"`
	Status FixtureStatus `json:"status"`
}

type FixtureStatus struct {
	Long  string `json:"long"`
	Short string `json:"short"`
}

type LeagueInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
}

type TeamPair struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OddsEnvelope wraps /odds responses.
type OddsEnvelope struct {
	Get      string          `json:"get"`
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Paging   Paging          `json:"paging"`
	Response []OddsItem      `json:"response"`
}

// OddsItem is the full bookmaker tree for one fixture.
type OddsItem struct {
	Fixture    OddsFixture `json:"fixture"`
	League     LeagueInfo  `json:"league"`
	Update     string      `json:"update"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

type OddsFixture struct {
	ID int64 `json:"id"`
}

type Bookmaker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

// Bet is one market as a bookmaker labels it, before classification.
type Bet struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Values []OddValue `json:"values"`
}

// OddValue is one priced outcome as published. Odd keeps the upstream
// decimal text untouched until extraction parses it.
type OddValue struct {
	Value    FlexString `json:"value"`
	Odd      FlexString `json:"odd"`
	Handicap FlexString `json:"handicap,omitempty"`
}

// BetsEnvelope wraps the optional /odds/bets catalog endpoint.
type BetsEnvelope struct {
	Get      string          `json:"get"`
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Paging   Paging          `json:"paging"`
	Response []BetDefinition `json:"response"`
}

// BetDefinition is one catalog entry naming a market the API can serve.
type BetDefinition struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
