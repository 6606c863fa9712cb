package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LeagueSet is a standalone league catalog. Deployments tracking many
// competitions keep the list in its own file and point the -leagues flag at
// it instead of growing the main configuration.
type LeagueSet struct {
	Leagues []LeagueConfig `yaml:"leagues"`
}

// LoadLeagues loads a league catalog from the given path. The file order
// replaces the inline league order, so it also fixes fetch and merge
// precedence.
func LoadLeagues(path string) ([]LeagueConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read leagues file: %w", err)
	}
	var set LeagueSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse leagues file: %w", err)
	}
	if len(set.Leagues) == 0 {
		return nil, fmt.Errorf("leagues file %s lists no leagues", path)
	}
	seen := make(map[int64]string, len(set.Leagues))
	for _, lg := range set.Leagues {
		if lg.ID <= 0 {
			return nil, fmt.Errorf("league '%s' has invalid id %d", lg.Code, lg.ID)
		}
		if prev, ok := seen[lg.ID]; ok {
			return nil, fmt.Errorf("league id %d listed twice ('%s' and '%s')", lg.ID, prev, lg.Code)
		}
		seen[lg.ID] = lg.Code
	}
	return set.Leagues, nil
}
