package ground

import (
	"context"

	"go.uber.org/zap"

	"stripsplan/internal/lifted"
)

// Ground runs C3's selected back-end over a validated lifted problem and
// returns the reachable fact table and ground operators C5 will assemble
// into a STRIPS task.
func Ground(ctx context.Context, p *lifted.Problem, cfg Config) (*Result, error) {
	log := cfg.logger()
	var res *Result
	var err error
	switch cfg.Backend {
	case Relational, "":
		res, err = RunRelational(ctx, p, cfg)
	case Datalog:
		if cfg.layered() {
			return nil, errLayeredDatalogUnsupported()
		}
		res, err = RunDatalog(p, cfg)
	default:
		return nil, errUnknownBackend(string(cfg.Backend))
	}
	if err != nil {
		return nil, err
	}
	log.Info("grounding complete",
		zap.String("backend", string(cfg.Backend)),
		zap.Int("dynamic_atoms", res.Table.Dynamic.Len()),
		zap.Int("operators", len(res.Operators)),
		zap.Bool("unsolvable", res.Unsolvable),
		zap.Bool("capped", res.Capped))
	return res, nil
}
