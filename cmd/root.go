package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bpsim/bpsim/sim"
	"github.com/bpsim/bpsim/sim/planners"
	"github.com/bpsim/bpsim/sim/problems"
)

var (
	// CLI flags for the simulation experiment
	seed         int64   // Seed for all random streams
	horizon      float64 // Simulated time at which each run stops
	warmup       float64 // Tasks activated before this time are excluded from averages
	duration     float64 // Arrival generation duration for generated problems
	replications int     // Number of independent replications
	workers      int     // Concurrent replications (<2 runs sequentially)
	lenient      bool    // Skip rejected assignments instead of aborting
	logLevel     string  // Log verbosity level

	// CLI flags for problem and planner selection
	problemName  string  // Problem family (mmc, imbalanced, sequential, spec, instance)
	specPath     string  // Problem spec YAML (with --problem spec)
	instancePath string  // Pre-generated instance YAML (with --problem instance)
	mmcServers   int     // Number of resources of the M/M/c problem
	spread       float64 // Processing time spread of the imbalanced problem
	plannerName  string  // Planner (greedy, heuristic, predictive, spt)
	predicter    string  // Predicter for the predictive planner (imbalanced, perfect)
	sptField     string  // Task data field read by the spt planner

	// CLI flags for instance generation
	outPath string // Where `generate` writes the instance
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "bpsim",
	Short: "Discrete-event simulator for business processes",
}

// runCmd executes a replicated simulation experiment from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a replicated simulation experiment",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		factory, err := problemFactory()
		if err != nil {
			logrus.Fatalf("Invalid problem selection: %v", err)
		}
		planner, err := buildPlanner()
		if err != nil {
			logrus.Fatalf("Invalid planner selection: %v", err)
		}

		logrus.Infof("Starting experiment: problem=%s planner=%s replications=%d horizon=%.1f seed=%d",
			problemName, plannerName, replications, horizon, seed)
		startTime := time.Now()

		instances, err := sim.GenerateInstances(factory, replications, seed)
		if err != nil {
			logrus.Fatalf("Generating problem instances: %v", err)
		}

		r := &sim.Replicator{Horizon: horizon, Seed: seed, Workers: workers, Lenient: lenient}
		result := r.Replicate(instances, planner, func() sim.Reporter {
			return sim.NewMetricsReporter(warmup)
		})
		if result.Succeeded == 0 {
			logrus.Fatalf("All %d replications failed", result.Failed)
		}

		printAggregates(sim.AggregateMetrics(result.Metrics))
		fmt.Printf("replications: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
		fmt.Printf("elapsed: %v\n", time.Since(startTime).Round(time.Millisecond))

		logrus.Info("Experiment complete.")
	},
}

// generateCmd pre-generates one problem instance and writes it to a file
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a problem instance and write it as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		factory, err := problemFactory()
		if err != nil {
			logrus.Fatalf("Invalid problem selection: %v", err)
		}
		p, err := factory(rand.New(rand.NewSource(seed)))
		if err != nil {
			logrus.Fatalf("Generating instance: %v", err)
		}
		gp, ok := p.(*problems.GeneratedProblem)
		if !ok {
			logrus.Fatalf("Problem %q does not support serialization", problemName)
		}
		if err := gp.SaveFile(outPath); err != nil {
			logrus.Fatalf("Writing instance: %v", err)
		}
		logrus.Infof("Wrote %d cases to %s", gp.CaseCount(), outPath)
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// problemFactory maps the problem flags to an instance factory. Instances
// loaded from a file are re-read per replication so concurrent runs never
// share state.
func problemFactory() (sim.ProblemFactory, error) {
	switch problemName {
	case "mmc":
		return func(rng *rand.Rand) (sim.Problem, error) {
			return problems.NewMMc(mmcServers, duration, rng)
		}, nil
	case "imbalanced":
		return func(rng *rand.Rand) (sim.Problem, error) {
			return problems.NewImbalanced(spread, duration, rng)
		}, nil
	case "sequential":
		return func(rng *rand.Rand) (sim.Problem, error) {
			return problems.NewSequential(duration, rng)
		}, nil
	case "spec":
		if specPath == "" {
			return nil, fmt.Errorf("--problem spec needs --spec")
		}
		ps, err := problems.LoadProblemSpec(specPath)
		if err != nil {
			return nil, err
		}
		return func(rng *rand.Rand) (sim.Problem, error) {
			return ps.Generate(duration, rng)
		}, nil
	case "instance":
		if instancePath == "" {
			return nil, fmt.Errorf("--problem instance needs --instance")
		}
		return func(*rand.Rand) (sim.Problem, error) {
			return problems.LoadFile(instancePath)
		}, nil
	default:
		return nil, fmt.Errorf("unknown problem %q", problemName)
	}
}

func buildPlanner() (sim.Planner, error) {
	switch plannerName {
	case "greedy":
		return planners.Greedy{}, nil
	case "heuristic":
		return planners.NewHeuristic(planners.SequentialPreferences()), nil
	case "predictive":
		pred, err := buildPredicter()
		if err != nil {
			return nil, err
		}
		return planners.NewPredictive(planners.SequentialPreferences(), pred), nil
	case "spt":
		return planners.NewShortestProcessingTime(sptField), nil
	default:
		return nil, fmt.Errorf("unknown planner %q", plannerName)
	}
}

func buildPredicter() (sim.Predicter, error) {
	switch predicter {
	case "imbalanced":
		return planners.ImbalancedPredicter{}, nil
	case "perfect":
		return planners.PerfectPredicter{}, nil
	default:
		return nil, fmt.Errorf("unknown predicter %q", predicter)
	}
}

func printAggregates(aggs map[string]sim.Aggregate) {
	fmt.Printf("%-30s %12s %12s %6s\n", "metric", "mean", "±95% CI", "n")
	for _, name := range sim.MetricNames(aggs) {
		a := aggs[name]
		fmt.Printf("%-30s %12.4f %12.4f %6d\n", name, a.Mean, a.HalfWidth, a.N)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, generateCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for all random streams")
		c.Flags().Float64Var(&duration, "generate-duration", 1000, "Arrival generation duration for generated problems")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

		c.Flags().StringVar(&problemName, "problem", "mmc", "Problem family (mmc, imbalanced, sequential, spec, instance)")
		c.Flags().StringVar(&specPath, "spec", "", "Problem spec YAML file (with --problem spec)")
		c.Flags().StringVar(&instancePath, "instance", "", "Pre-generated instance YAML file (with --problem instance)")
		c.Flags().IntVar(&mmcServers, "mmc-c", 1, "Number of resources of the M/M/c problem")
		c.Flags().Float64Var(&spread, "spread", 1.0, "Processing time spread of the imbalanced problem")
	}

	runCmd.Flags().Float64Var(&horizon, "horizon", 1000, "Simulated time at which each run stops")
	runCmd.Flags().Float64Var(&warmup, "warmup", 0, "Warmup time excluded from the averages")
	runCmd.Flags().IntVar(&replications, "replications", 20, "Number of independent replications")
	runCmd.Flags().IntVar(&workers, "workers", 1, "Concurrent replications (values below 2 run sequentially)")
	runCmd.Flags().BoolVar(&lenient, "lenient", false, "Skip rejected assignments instead of aborting the run")
	runCmd.Flags().StringVar(&plannerName, "planner", "greedy", "Planner (greedy, heuristic, predictive, spt)")
	runCmd.Flags().StringVar(&predicter, "predicter", "perfect", "Predicter for the predictive planner (imbalanced, perfect)")
	runCmd.Flags().StringVar(&sptField, "spt-field", "processing_time", "Task data field read by the spt planner")

	generateCmd.Flags().StringVar(&outPath, "out", "instance.yaml", "Output instance file")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}
