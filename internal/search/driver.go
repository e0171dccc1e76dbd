package search

import (
	"go.uber.org/zap"

	"stripsplan/internal/ground"
	"stripsplan/internal/obslog"
	"stripsplan/internal/strips"
)

// Variant selects one of spec.md §4.7's three flavored algorithms, each a
// choice of weights (w_g, w_h) plus a "lazy" flag.
type Variant int

const (
	AStar Variant = iota
	Greedy
	Lazy
)

func (v Variant) weights() (wg, wh int64, lazy bool) {
	switch v {
	case Greedy:
		return 0, 1, false
	case Lazy:
		return 0, 1, true
	default:
		return 1, 1, false
	}
}

// Status is the driver's terminal outcome, one of spec.md §7's recoverable
// status codes rather than an error value.
type Status int

const (
	StatusFound Status = iota
	StatusUnsolvable
	StatusAbort
)

// Config is C7's search configuration (spec.md §6): algorithm variant and
// heuristic handle. A cost-metric override is the task's own concern
// (strips.Task.UnitCost) rather than the driver's.
type Config struct {
	Variant   Variant
	Heuristic Heuristic

	// Logger receives search start/end (Info) and per-expansion (Debug)
	// progress messages; a nil Logger is equivalent to obslog.Nop() (see
	// SPEC_FULL.md §2.1).
	Logger *obslog.Logger
}

func (c Config) logger() *obslog.Logger {
	if c.Logger == nil {
		return obslog.Nop()
	}
	return c.Logger
}

// DefaultConfig runs A* with the goal-count heuristic.
func DefaultConfig() Config {
	return Config{Variant: AStar, Heuristic: GoalCount{}}
}

func stateSet(content []strips.Fact) map[strips.Fact]bool {
	m := make(map[strips.Fact]bool, len(content))
	for _, f := range content {
		m[f] = true
	}
	return m
}

func priority(wg, wh int64, g ground.Cost, h ground.Cost) int64 {
	if g.IsInfinite() || h.IsInfinite() {
		return int64(ground.Infinite)
	}
	return wg*int64(g) + wh*int64(h)
}

// Run drives C4-C6 per spec.md §4.7's common loop: A*/greedy search that
// expands states in priority order, materializes successors through the
// task's operators, and extracts a plan on reaching the goal. stop, if
// non-nil, is polled once per loop iteration (spec.md §5 "a check at loop
// top"); a closed/ready channel aborts the run.
func Run(task *strips.Task, cfg Config, stop <-chan struct{}) (*Plan, Status, *Stats, error) {
	if cfg.Heuristic == nil {
		return nil, StatusAbort, nil, errBadConfig("search config: Heuristic must not be nil")
	}
	log := cfg.logger()
	log.Info("search starting", zap.Int("variant", int(cfg.Variant)), zap.Int("num_facts", task.NumFacts))
	stats := &Stats{}
	if task.Unsolvable {
		log.Info("search finished", zap.String("status", "unsolvable"), zap.String("reason", "ungrounded task marked unsolvable"))
		return nil, StatusUnsolvable, stats, nil
	}

	wg, wh, lazy := cfg.Variant.weights()
	space := NewSpace()
	open := NewOpenList()

	initID := space.Insert(task.Init)
	if task.IsGoal(stateSet(space.Content(initID))) {
		// spec.md §8 boundary: goal already true in the initial state is
		// found at the init step itself, with zero expansions.
		space.SetNode(initID, Node{Parent: -1, Op: -1, G: 0, Status: StatusClosed, Verified: true})
		stats.ClosedCount++
		plan := extractPlan(space, initID)
		log.Info("search finished", zap.String("status", "found"), zap.Int64("cost", int64(plan.Cost)), zap.Int64("expansions", stats.Expansions))
		return plan, StatusFound, stats, nil
	}

	h0 := cfg.Heuristic.Evaluate(space.Content(initID), task)
	stats.HeuristicEvals++
	if h0.IsInfinite() {
		space.SetNode(initID, Node{Parent: -1, Op: -1, G: 0, Status: StatusClosed, H: h0, Verified: true})
		stats.ClosedCount++
		stats.DeadEnds++
		log.Info("search finished", zap.String("status", "unsolvable"), zap.String("reason", "initial state is a dead end"))
		return nil, StatusUnsolvable, stats, nil
	}
	space.SetNode(initID, Node{Parent: -1, Op: -1, G: 0, Status: StatusOpen, H: h0, Verified: true})
	stats.OpenCount++
	open.Push(initID, priority(wg, wh, 0, h0), int64(h0), 0)

	for {
		if stop != nil {
			select {
			case <-stop:
				log.Info("search finished", zap.String("status", "aborted"), zap.Int64("expansions", stats.Expansions))
				return nil, StatusAbort, stats, nil
			default:
			}
		}

		entry, ok := open.PopMin()
		if !ok {
			log.Info("search finished", zap.String("status", "unsolvable"), zap.String("reason", "open list exhausted"), zap.Int64("expansions", stats.Expansions))
			return nil, StatusUnsolvable, stats, nil
		}
		stats.Steps++

		node := space.Node(entry.StateID)
		if node.Status != StatusOpen || node.G != entry.G {
			continue // stale entry: superseded or already closed
		}

		content := space.Content(entry.StateID)

		if lazy && !node.Verified {
			h := cfg.Heuristic.Evaluate(content, task)
			stats.HeuristicEvals++
			node.H = h
			node.Verified = true
			if h.IsInfinite() {
				node.Status = StatusClosed
				space.SetNode(entry.StateID, node)
				stats.OpenCount--
				stats.ClosedCount++
				stats.DeadEnds++
				continue
			}
			space.SetNode(entry.StateID, node)
		}

		node.Status = StatusClosed
		space.SetNode(entry.StateID, node)
		f := priority(wg, wh, node.G, node.H)
		stats.OpenCount--
		stats.ClosedCount++
		if f != stats.LastF {
			stats.ExpansionsBeforeLastF = stats.Expansions
			stats.DeadEndsBeforeLastF = stats.DeadEnds
			stats.LastF = f
		}
		stats.Expansions++
		if stats.Expansions%1000 == 0 {
			log.Debug("search progress", zap.Int64("expansions", stats.Expansions), zap.Int64("open", stats.OpenCount), zap.Int64("f", f))
		}

		if task.IsGoal(stateSet(content)) {
			plan := extractPlan(space, entry.StateID)
			log.Info("search finished", zap.String("status", "found"), zap.Int64("cost", int64(plan.Cost)), zap.Int64("expansions", stats.Expansions))
			return plan, StatusFound, stats, nil
		}

		state := stateSet(content)
		for _, op := range task.Operators {
			if !op.Applicable(state) {
				continue
			}
			successor := op.Apply(state)
			succContent := setToFacts(successor)
			succID := space.Insert(succContent)
			stats.Generations++

			gPrime := node.G.Add(op.EffectiveCost(state))
			succNode := space.Node(succID)
			if succNode.Status != StatusNew && succNode.G <= gPrime {
				continue
			}

			var h ground.Cost
			verified := false
			if lazy {
				h = node.H // placeholder borrowed from the parent
			} else {
				h = cfg.Heuristic.Evaluate(succContent, task)
				stats.HeuristicEvals++
				verified = true
				if h.IsInfinite() {
					space.SetNode(succID, Node{Parent: entry.StateID, Op: op.ID, G: gPrime, Status: StatusClosed, H: h, Verified: true})
					switch succNode.Status {
					case StatusNew:
						stats.ClosedCount++
					case StatusOpen:
						stats.OpenCount--
						stats.ClosedCount++
					}
					stats.DeadEnds++
					continue
				}
			}

			wasClosed := succNode.Status == StatusClosed
			space.SetNode(succID, Node{Parent: entry.StateID, Op: op.ID, G: gPrime, Status: StatusOpen, H: h, Verified: verified})
			if wasClosed {
				stats.Reopens++
				stats.ClosedCount--
				stats.OpenCount++
			} else if succNode.Status == StatusNew {
				stats.OpenCount++
			}
			open.Push(succID, priority(wg, wh, gPrime, h), int64(h), gPrime)
		}
	}
}

func setToFacts(set map[strips.Fact]bool) []strips.Fact {
	out := make([]strips.Fact, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	return out
}
