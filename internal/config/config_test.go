package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stripsplan/internal/ground"
	"stripsplan/internal/search"
)

func TestLoadSaveRoundTrips(t *testing.T) {
	cfg := Config{
		Ground: GroundConfig{Backend: "datalog", KeepStaticFacts: true, MaxLayers: 5},
		Search: SearchConfig{Variant: "greedy", Heuristic: "hadd"},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Ground.Backend != "datalog" || !got.Ground.KeepStaticFacts || got.Ground.MaxLayers != 5 {
		t.Errorf("ground config did not round-trip: %+v", got.Ground)
	}
	if got.Search.Variant != "greedy" || got.Search.Heuristic != "hadd" {
		t.Errorf("search config did not round-trip: %+v", got.Search)
	}
}

func TestLoadMissingFileReturnsWrappedError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the error to wrap os.ErrNotExist, got %v", err)
	}
}

func TestDefaultConfigConvertsToUsableConfigs(t *testing.T) {
	cfg := DefaultConfig()

	gc, err := cfg.Ground.ToGroundConfig()
	if err != nil {
		t.Fatalf("ToGroundConfig: %v", err)
	}
	if gc.Backend != ground.Relational {
		t.Errorf("expected relational backend, got %v", gc.Backend)
	}

	sc, err := cfg.Search.ToSearchConfig()
	if err != nil {
		t.Fatalf("ToSearchConfig: %v", err)
	}
	if sc.Variant != search.AStar {
		t.Errorf("expected AStar variant, got %v", sc.Variant)
	}
	if _, ok := sc.Heuristic.(search.GoalCount); !ok {
		t.Errorf("expected GoalCount heuristic, got %T", sc.Heuristic)
	}
}

func TestGroundConfigRejectsUnknownBackend(t *testing.T) {
	_, err := GroundConfig{Backend: "nonsense"}.ToGroundConfig()
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestSearchConfigRejectsUnknownVariantAndHeuristic(t *testing.T) {
	if _, err := (SearchConfig{Variant: "nonsense", Heuristic: "goalcount"}).ToSearchConfig(); err == nil {
		t.Fatal("expected an error for an unknown variant")
	}
	if _, err := (SearchConfig{Variant: "astar", Heuristic: "nonsense"}).ToSearchConfig(); err == nil {
		t.Fatal("expected an error for an unknown heuristic")
	}
}

func TestSearchConfigSelectsEachHeuristic(t *testing.T) {
	cases := map[string]any{
		"blind":     search.Blind{},
		"goalcount": search.GoalCount{},
		"hmax":      search.RelaxedPlanningGraph{Agg: search.AggregateMax},
		"hadd":      search.RelaxedPlanningGraph{Agg: search.AggregateAdd},
	}
	for name, want := range cases {
		sc, err := (SearchConfig{Variant: "astar", Heuristic: name}).ToSearchConfig()
		if err != nil {
			t.Fatalf("heuristic %q: %v", name, err)
		}
		if got := sc.Heuristic; got != want {
			t.Errorf("heuristic %q: got %#v, want %#v", name, got, want)
		}
	}
}

func TestSaveCreatesParentlessFileCleanly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}
