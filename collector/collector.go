// Package collector orchestrates one snapshot run: fetch the day's fixtures
// and odds for every configured league, extract canonical markets, aggregate
// them into a daily snapshot, persist it, mirror it and prune old archives.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"oddsflow/apifootball"
	"oddsflow/config"
	"oddsflow/logger"
	"oddsflow/markets"
	"oddsflow/models"
	"oddsflow/snapshot"
)

// Collector drives one end-to-end collection cycle.
type Collector struct {
	cfg       *config.Config
	client    *apifootball.Client
	extractor *markets.Extractor
	store     *snapshot.Store
	pruner    *snapshot.Pruner
	mirror    *snapshot.Mirror
	loc       *time.Location
	log       *logger.Log

	mu      sync.RWMutex
	running bool
}

// New wires a collector from configuration. The S3 mirror is built only
// when enabled.
func New(ctx context.Context, cfg *config.Config) (*Collector, error) {
	extractor, err := markets.NewExtractor(markets.Config{
		PreferredBookmakers: cfg.Markets.PreferredBookmakers,
		OverUnderTarget:     cfg.Markets.OverUnderTarget,
	})
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	c := &Collector{
		cfg:       cfg,
		client:    apifootball.New(cfg.API),
		extractor: extractor,
		store:     snapshot.NewStore(cfg.Snapshot.OutDir),
		pruner:    snapshot.NewPruner(),
		loc:       loc,
		log:       logger.GetLogger(),
	}
	if cfg.Snapshot.S3.Enabled {
		mirror, err := snapshot.NewMirror(ctx, cfg.Snapshot.S3)
		if err != nil {
			return nil, fmt.Errorf("init s3 mirror: %w", err)
		}
		c.mirror = mirror
	}
	return c, nil
}

// Run performs one collection cycle and returns the summary the process
// prints to stdout. Only one run may be active per collector at a time; the
// snapshot date is today in the configured timezone.
func (c *Collector) Run(ctx context.Context) (*models.RunSummary, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, fmt.Errorf("collector already running")
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	started := time.Now()
	runID := uuid.New().String()
	date := time.Now().In(c.loc).Format("2006-01-02")
	log := c.log.WithFields(logger.Fields{"run_id": runID, "date": date}).WithComponent("collector")
	log.Info("collection run started")

	if c.cfg.API.BetsCatalog {
		if defs, err := c.client.BetsCatalog(ctx); err != nil {
			log.WithError(err).Warn("bets catalog unavailable")
		} else {
			log.WithFields(logger.Fields{"markets": len(defs)}).Debug("bets catalog fetched")
		}
	}

	index, order, err := c.collectFixtures(ctx, date, log)
	if err != nil {
		return nil, err
	}
	oddsSeen, extracted, err := c.collectOdds(ctx, date, index, log)
	if err != nil {
		return nil, err
	}

	items := make([]models.FixtureRecord, 0, len(order))
	for _, id := range order {
		items = append(items, *index[id])
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		if items[i].LeagueID != items[j].LeagueID {
			return items[i].LeagueID < items[j].LeagueID
		}
		return items[i].FixtureID < items[j].FixtureID
	})

	snap := &models.DailySnapshot{Date: date, Count: len(items), Items: items}
	archivePath, err := c.store.Save(snap)
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	if c.mirror != nil {
		if err := c.mirror.Upload(ctx, archivePath, c.store.LatestPath(), date); err != nil {
			log.WithError(err).Warn("s3 mirror failed")
			c.log.LogMetric("collector", "mirror_failures", 1, "counter", nil)
		}
	}

	removed := c.pruner.Prune(c.cfg.Snapshot.OutDir, c.cfg.Snapshot.RetentionDays)

	c.log.LogMetric("collector", "fixtures_collected", len(items), "counter", logger.Fields{"date": date})
	c.log.LogMetric("collector", "odds_collected", oddsSeen, "counter", logger.Fields{"date": date})
	c.log.LogMetric("collector", "markets_extracted", extracted, "counter", logger.Fields{"date": date})
	c.log.LogMetric("collector", "archives_pruned", len(removed), "counter", nil)
	logger.LogPerformanceEntry(c.log.WithFields(logger.Fields{"run_id": runID}), "collector", "run", time.Since(started), logger.Fields{"fixtures": len(items)})
	log.WithFields(logger.Fields{"fixtures": len(items), "archive": archivePath, "pruned": len(removed)}).Info("collection run finished")

	return &models.RunSummary{
		Meta: models.RunMeta{
			SavedGzip:     archivePath,
			RemovedCount:  len(removed),
			RetentionDays: c.cfg.Snapshot.RetentionDays,
			OutDir:        c.cfg.Snapshot.OutDir,
		},
		Snapshot: snap,
	}, nil
}

// collectFixtures queries every configured league for the day and indexes
// the resulting records by fixture id. Leagues are visited in their
// configured order; a fixture id seen twice keeps its first identity.
func (c *Collector) collectFixtures(ctx context.Context, date string, log *logger.Entry) (map[int64]*models.FixtureRecord, []int64, error) {
	index := make(map[int64]*models.FixtureRecord)
	var order []int64
	for _, lg := range c.cfg.Leagues {
		fixtures, err := c.client.Fixtures(ctx, lg.ID, c.cfg.Season, date)
		if err != nil {
			return nil, nil, fmt.Errorf("fixtures for league %s: %w", lg.Code, err)
		}
		logger.IncrementFixturesRead(len(fixtures))
		for _, item := range fixtures {
			id := item.Fixture.ID
			if id == 0 {
				continue
			}
			if _, ok := index[id]; ok {
				continue
			}
			index[id] = &models.FixtureRecord{
				FixtureID: id,
				Date:      c.formatKickoff(item.Fixture.Date),
				Status:    item.Fixture.Status.Short,
				LeagueID:  item.League.ID,
				League:    leagueLabel(item.League),
				Home:      item.Teams.Home.Name,
				Away:      item.Teams.Away.Name,
			}
			order = append(order, id)
		}
		log.WithFields(logger.Fields{"league": lg.Code, "fixtures": len(fixtures)}).Info("league fixtures collected")
	}
	return index, order, nil
}

// collectOdds queries odds per league and merges extracted markets into the
// fixture index. Odds for fixtures outside the index are ignored; repeated
// fixtures merge with last write winning per market type. Returns the number
// of odds entries seen and the number that produced markets.
func (c *Collector) collectOdds(ctx context.Context, date string, index map[int64]*models.FixtureRecord, log *logger.Entry) (int, int, error) {
	seen, extracted := 0, 0
	for _, lg := range c.cfg.Leagues {
		items, err := c.client.Odds(ctx, lg.ID, c.cfg.Season, date)
		if err != nil {
			return seen, extracted, fmt.Errorf("odds for league %s: %w", lg.Code, err)
		}
		logger.IncrementOddsRead(len(items))
		seen += len(items)
		matched := 0
		for _, item := range items {
			rec, ok := index[item.Fixture.ID]
			if item.Fixture.ID == 0 || !ok {
				continue
			}
			if m := c.extractor.Extract(item.Bookmakers); !m.Empty() {
				rec.Markets.Merge(m)
				matched++
			}
		}
		extracted += matched
		log.WithFields(logger.Fields{"league": lg.Code, "odds_items": len(items), "with_markets": matched}).Info("league odds collected")
	}
	return seen, extracted, nil
}

// formatKickoff renders an upstream RFC3339 kickoff in the collector's
// timezone. Unparsable input passes through untouched rather than being
// dropped.
func (c *Collector) formatKickoff(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.In(c.loc).Format("2006-01-02 15:04:05 -0700")
}

// leagueLabel joins country and league name ("Brazil Serie A").
func leagueLabel(lg models.LeagueInfo) string {
	return strings.TrimSpace(lg.Country + " " + lg.Name)
}
