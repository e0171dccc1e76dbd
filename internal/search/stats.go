package search

// Stats is spec.md §4.7's running statistics: per-step counters observable
// at the end of a search run, which never affect correctness. OpenCount and
// ClosedCount track the current number of states in each status; every
// other counter is a monotonic running total.
type Stats struct {
	Steps                 int64
	Expansions            int64
	ExpansionsBeforeLastF int64
	HeuristicEvals        int64
	Generations           int64
	OpenCount             int64
	ClosedCount           int64
	Reopens               int64
	DeadEnds              int64
	DeadEndsBeforeLastF   int64
	LastF                 int64
}
