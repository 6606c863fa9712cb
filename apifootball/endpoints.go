package apifootball

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"oddsflow/logger"
	"oddsflow/models"
)

// Fixtures returns the fixtures scheduled for one league, season and date,
// following pagination until the API reports the last page.
func (c *Client) Fixtures(ctx context.Context, leagueID int64, season int, date string) ([]models.FixtureItem, error) {
	var items []models.FixtureItem
	for page := 1; ; page++ {
		var env models.FixturesEnvelope
		if err := c.get(ctx, "/fixtures", listParams(leagueID, season, date, page), &env); err != nil {
			return nil, err
		}
		if msgs := envelopeErrors(env.Errors); len(msgs) != 0 {
			return nil, fmt.Errorf("fixtures request rejected: %s", strings.Join(msgs, "; "))
		}
		items = append(items, env.Response...)
		if env.Paging.Total <= page || env.Paging.Current >= env.Paging.Total {
			break
		}
	}
	c.log.WithFields(logger.Fields{"league": leagueID, "date": date, "fixtures": len(items)}).Debug("fetched fixtures")
	return items, nil
}

// Odds returns the raw bookmaker odds for one league, season and date. No
// bet filter is sent, so the API returns every market it carries.
func (c *Client) Odds(ctx context.Context, leagueID int64, season int, date string) ([]models.OddsItem, error) {
	var items []models.OddsItem
	for page := 1; ; page++ {
		var env models.OddsEnvelope
		if err := c.get(ctx, "/odds", listParams(leagueID, season, date, page), &env); err != nil {
			return nil, err
		}
		if msgs := envelopeErrors(env.Errors); len(msgs) != 0 {
			return nil, fmt.Errorf("odds request rejected: %s", strings.Join(msgs, "; "))
		}
		items = append(items, env.Response...)
		if env.Paging.Total <= page || env.Paging.Current >= env.Paging.Total {
			break
		}
	}
	c.log.WithFields(logger.Fields{"league": leagueID, "date": date, "odds": len(items)}).Debug("fetched odds")
	return items, nil
}

// BetsCatalog returns the API's market catalog. The endpoint exists for
// diagnostics only; callers treat failures as non-fatal.
func (c *Client) BetsCatalog(ctx context.Context) ([]models.BetDefinition, error) {
	var env models.BetsEnvelope
	if err := c.get(ctx, "/odds/bets", nil, &env); err != nil {
		return nil, err
	}
	if msgs := envelopeErrors(env.Errors); len(msgs) != 0 {
		return nil, fmt.Errorf("bets catalog request rejected: %s", strings.Join(msgs, "; "))
	}
	return env.Response, nil
}

func listParams(leagueID int64, season int, date string, page int) map[string]string {
	params := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
		"date":   date,
	}
	if page > 1 {
		params["page"] = strconv.Itoa(page)
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if len(params) != 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode(), bodySnippet(resp.Body()))
	}
	logger.RecordEndpoint(path, len(resp.Body()))
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("GET %s: invalid JSON: %w", path, err)
	}
	return nil
}

// bodySnippet caps an upstream error payload for inclusion in error text.
func bodySnippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 2000 {
		s = s[:2000]
	}
	return s
}

// envelopeErrors flattens the API's errors field, which is an empty array on
// success and an object (or occasionally an array) of messages on failure.
func envelopeErrors(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("[]")) ||
		bytes.Equal(trimmed, []byte("{}")) ||
		bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var obj map[string]string
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		msgs := make([]string, 0, len(obj))
		for field, msg := range obj {
			msgs = append(msgs, field+": "+msg)
		}
		sort.Strings(msgs)
		return msgs
	}

	var arr []string
	if err := json.Unmarshal(trimmed, &arr); err == nil {
		return arr
	}
	return []string{string(trimmed)}
}
