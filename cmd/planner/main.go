// Command planner is a cobra CLI over the stripsplan façade: ground a
// lifted domain/problem pair into a propositional task, solve it with
// best-first search, or print the run's statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stripsplan"
	plannerconfig "stripsplan/internal/config"
	"stripsplan/internal/ground"
	"stripsplan/internal/obslog"
	"stripsplan/internal/search"
)

var (
	domainFile  string
	problemFile string
	configFile  string
	verbose     bool
)

func newLogger() *obslog.Logger {
	if !verbose {
		return obslog.Nop()
	}
	z, err := zap.NewDevelopment()
	if err != nil {
		return obslog.Nop()
	}
	return obslog.New(z)
}

func loadConfigs() (ground.Config, search.Config, error) {
	cfg := plannerconfig.DefaultConfig()
	if configFile != "" {
		loaded, err := plannerconfig.Load(configFile)
		if err != nil {
			return ground.Config{}, search.Config{}, fmt.Errorf("loading config: %w", err)
		}
		cfg = *loaded
	}
	gcfg, err := cfg.Ground.ToGroundConfig()
	if err != nil {
		return ground.Config{}, search.Config{}, err
	}
	scfg, err := cfg.Search.ToSearchConfig()
	if err != nil {
		return ground.Config{}, search.Config{}, err
	}
	log := newLogger()
	gcfg.Logger = log
	scfg.Logger = log
	return gcfg, scfg, nil
}

func loadTask(ctx context.Context) (*stripsplan.Task, error) {
	if domainFile == "" || problemFile == "" {
		return nil, fmt.Errorf("both --domain and --problem are required")
	}
	domainSrc, err := os.ReadFile(domainFile)
	if err != nil {
		return nil, fmt.Errorf("reading domain file: %w", err)
	}
	problemSrc, err := os.ReadFile(problemFile)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}
	d, err := stripsplan.LoadDomain(string(domainSrc))
	if err != nil {
		return nil, err
	}
	p, err := stripsplan.LoadProblem(string(problemSrc), d)
	if err != nil {
		return nil, err
	}
	gcfg, _, err := loadConfigs()
	if err != nil {
		return nil, err
	}
	return stripsplan.Ground(ctx, p, gcfg)
}

var rootCmd = &cobra.Command{
	Use:           "planner",
	Short:         "Ground and solve classical STRIPS planning problems",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var groundCmd = &cobra.Command{
	Use:   "ground",
	Short: "Ground a domain/problem pair into a propositional task and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := loadTask(cmd.Context())
		if err != nil {
			return err
		}
		if task.Unsolvable {
			fmt.Println("task is unsolvable (goal unreachable during grounding)")
			return nil
		}
		fmt.Printf("facts: %d\n", task.NumFacts)
		fmt.Printf("operators: %d\n", len(task.Operators))
		fmt.Printf("capped: %v\n", task.Capped)
		fmt.Printf("unit-cost: %v\n", task.UnitCost)
		return nil
	},
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Ground and solve a domain/problem pair, printing the plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		task, err := loadTask(ctx)
		if err != nil {
			return err
		}
		_, scfg, err := loadConfigs()
		if err != nil {
			return err
		}

		stop := make(chan struct{})
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				close(stop)
			case <-ctx.Done():
			}
		}()

		plan, status, _, err := stripsplan.Solve(task, scfg, stop)
		if err != nil {
			return err
		}
		switch status {
		case stripsplan.StatusFound:
			fmt.Print(stripsplan.Render(task, plan))
		case stripsplan.StatusUnsolvable:
			fmt.Println(";; unsolvable")
		case stripsplan.StatusAbort:
			fmt.Println(";; aborted")
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Ground and solve a domain/problem pair, printing search statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		task, err := loadTask(ctx)
		if err != nil {
			return err
		}
		_, scfg, err := loadConfigs()
		if err != nil {
			return err
		}
		_, status, stats, err := stripsplan.Solve(task, scfg, nil)
		if err != nil {
			return err
		}
		fmt.Printf("status: %v\n", statusName(status))
		if stats == nil {
			return nil
		}
		fmt.Printf("steps: %d\n", stats.Steps)
		fmt.Printf("expansions: %d\n", stats.Expansions)
		fmt.Printf("generations: %d\n", stats.Generations)
		fmt.Printf("heuristic evals: %d\n", stats.HeuristicEvals)
		fmt.Printf("reopens: %d\n", stats.Reopens)
		fmt.Printf("dead ends: %d\n", stats.DeadEnds)
		fmt.Printf("last f: %d\n", stats.LastF)
		return nil
	},
}

func statusName(s stripsplan.Status) string {
	switch s {
	case stripsplan.StatusFound:
		return "found"
	case stripsplan.StatusUnsolvable:
		return "unsolvable"
	case stripsplan.StatusAbort:
		return "abort"
	default:
		return "unknown"
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&domainFile, "domain", "", "path to a domain definition file")
	rootCmd.PersistentFlags().StringVar(&problemFile, "problem", "", "path to a problem definition file")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a planner.yaml grounding/search config (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode structured logging")

	rootCmd.AddCommand(groundCmd, solveCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
