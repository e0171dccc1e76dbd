// Package config loads grounding and search configuration (spec.md §6)
// from YAML, mirroring the teacher's internal/serialization LoadJSON/
// SaveJSON pair (open file, decode, wrap error) but for configuration
// rather than graph data.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stripsplan/internal/ground"
	"stripsplan/internal/search"
)

// GroundConfig is the YAML-loadable mirror of ground.Config (spec.md §6
// "Input — grounding config").
type GroundConfig struct {
	Backend                       string `yaml:"backend"`
	KeepStaticFacts               bool   `yaml:"keep_static_facts"`
	KeepActionArgs                bool   `yaml:"keep_action_args"`
	RemoveStaticFromPreconditions bool   `yaml:"remove_static_from_preconditions"`
	MaxLayers                     int    `yaml:"max_layers"`
	MaxAtoms                      int    `yaml:"max_atoms"`
}

// ToGroundConfig converts the YAML-loadable form to ground.Config. Logger
// is left nil; callers that want logging set cfg.Logger after conversion.
func (g GroundConfig) ToGroundConfig() (ground.Config, error) {
	var backend ground.Backend
	switch g.Backend {
	case "", "relational":
		backend = ground.Relational
	case "datalog":
		backend = ground.Datalog
	default:
		return ground.Config{}, errBadValue(fmt.Sprintf("unknown grounding backend %q", g.Backend))
	}
	return ground.Config{
		Backend:                       backend,
		KeepStaticFacts:               g.KeepStaticFacts,
		KeepActionArgs:                g.KeepActionArgs,
		RemoveStaticFromPreconditions: g.RemoveStaticFromPreconditions,
		MaxLayers:                     g.MaxLayers,
		MaxAtoms:                      g.MaxAtoms,
	}, nil
}

// SearchConfig is the YAML-loadable mirror of search.Config (spec.md §6
// "Input — search config").
type SearchConfig struct {
	Variant   string `yaml:"variant"`
	Heuristic string `yaml:"heuristic"`
}

// ToSearchConfig converts the YAML-loadable form to search.Config. Logger
// is left nil; callers that want logging set cfg.Logger after conversion.
func (s SearchConfig) ToSearchConfig() (search.Config, error) {
	var variant search.Variant
	switch s.Variant {
	case "", "astar":
		variant = search.AStar
	case "greedy":
		variant = search.Greedy
	case "lazy":
		variant = search.Lazy
	default:
		return search.Config{}, errBadValue(fmt.Sprintf("unknown search variant %q", s.Variant))
	}

	var h search.Heuristic
	switch s.Heuristic {
	case "", "goalcount":
		h = search.GoalCount{}
	case "blind":
		h = search.Blind{}
	case "hmax":
		h = search.RelaxedPlanningGraph{Agg: search.AggregateMax}
	case "hadd":
		h = search.RelaxedPlanningGraph{Agg: search.AggregateAdd}
	default:
		return search.Config{}, errBadValue(fmt.Sprintf("unknown heuristic %q", s.Heuristic))
	}

	return search.Config{Variant: variant, Heuristic: h}, nil
}

// Config is the top-level planner configuration file: grounding config and
// search config in one YAML document.
type Config struct {
	Ground GroundConfig `yaml:"ground"`
	Search SearchConfig `yaml:"search"`
}

// DefaultConfig mirrors ground.DefaultConfig/search.DefaultConfig: the
// relational backend with A* over the goal-count heuristic.
func DefaultConfig() Config {
	return Config{
		Ground: GroundConfig{Backend: "relational"},
		Search: SearchConfig{Variant: "astar", Heuristic: "goalcount"},
	}
}

// Load reads a planner config from a YAML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config YAML %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to a YAML file at path.
func Save(cfg Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config YAML %s: %w", path, err)
	}
	return nil
}
