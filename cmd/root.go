package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/epidemic-sim/epidemic-sim/epi"
)

var (
	// CLI flags shared by the run and params subcommands
	modelVariant string   // model variant name (sir, seir, seair, seichar)
	region       string   // demography region key (empty = normalized population 1.0)
	regionsFile  string   // optional YAML region table overriding the built-in one
	diseaseFile  string   // optional YAML disease defaults file
	diseaseName  string   // disease entry to pick from the defaults file
	overrides    []string // name=value parameter overrides, aliases allowed
	logLevel     string   // log verbosity level

	// CLI flags for the run subcommand only
	duration     float64 // simulation duration in days
	stepSize     float64 // output grid spacing in days
	population   float64 // explicit population override (0 = demography or 1.0)
	seedFraction float64 // initial infectious seed fraction
	plotPath     string  // if set, render an HTML chart of the run here
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "epidemic-sim",
	Short: "Deterministic compartmental epidemic simulator",
}

// parseOverrides turns repeated --set name=value flags into an override map.
func parseOverrides(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed --set %q, want name=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed --set %q: %v", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// buildModel assembles a model from the CLI flags: demography table, disease
// defaults, and parameter overrides.
func buildModel() (*epi.Model, error) {
	ov, err := parseOverrides(overrides)
	if err != nil {
		return nil, err
	}
	disease, err := resolveDisease(diseaseFile, diseaseName)
	if err != nil {
		return nil, err
	}
	demography, err := resolveRegions(regionsFile)
	if err != nil {
		return nil, err
	}
	return epi.New(modelVariant, epi.Options{
		Region:       region,
		Demography:   demography,
		Population:   population,
		SeedFraction: seedFraction,
		Overrides:    ov,
		Disease:      &disease,
	})
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an epidemic simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		m, err := buildModel()
		if err != nil {
			logrus.Fatalf("Cannot build %s model: %v", modelVariant, err)
		}

		logrus.Infof("Starting %s simulation: region=%q population=%g duration=%gd",
			m.Spec.Name, region, m.Population, duration)

		run, err := m.RunWithStep(duration, stepSize)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		printSummary(run)

		if plotPath != "" {
			if err := renderPlot(run, plotPath); err != nil {
				logrus.Fatalf("Cannot render plot: %v", err)
			}
			logrus.Infof("Plot written to %s", plotPath)
		}

		logrus.Info("Simulation complete.")
	},
}

// printSummary displays headline numbers for a completed run.
func printSummary(run *epi.SimulationRun) {
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Model               : %s\n", run.Spec().Name)
	fmt.Printf("Population          : %g\n", run.Population)
	fmt.Printf("Days simulated      : %g\n", run.Times[len(run.Times)-1])

	if infectious, err := run.Get("infectious"); err == nil {
		peak := floats.MaxIdx(infectious.Values)
		fmt.Printf("Peak infectious     : %g (day %g)\n", infectious.Values[peak], infectious.Times[peak])
	}
	if susceptible, err := run.Get("S:final"); err == nil {
		fmt.Printf("Final susceptible   : %g (%.2f%% of population)\n",
			susceptible.Values[0], 100*susceptible.Values[0]/run.Population)
	}
	if cases, err := run.Get("cases:final"); err == nil {
		fmt.Printf("Total cases         : %g\n", cases.Values[0])
	}
	if d := run.Diagnostics; d.ClampedValues > 0 {
		fmt.Printf("Clamped values      : %d across %d steps (max %g)\n",
			d.ClampedValues, d.ClampedSteps, d.MaxClampMagnitude)
	}
}

// paramsCmd prints the resolved parameter table for a variant
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show the resolved parameter table for a model variant",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		m, err := buildModel()
		if err != nil {
			logrus.Fatalf("Cannot build %s model: %v", modelVariant, err)
		}

		fmt.Printf("=== %s parameters ===\n", m.Spec.Name)
		for _, row := range m.Params.Table() {
			kind := "canonical"
			if row.Derived {
				kind = "derived"
			}
			line := fmt.Sprintf("%-24s %-10s %12.6g", row.Name, kind, row.Value)
			if row.HasCI {
				line += fmt.Sprintf("  [%g, %g]", row.Low, row.High)
			}
			if row.Ref != "" {
				line += "  " + row.Ref
			}
			fmt.Println(line)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, paramsCmd} {
		c.Flags().StringVar(&modelVariant, "model", "sir", "Model variant (sir, seir, seair, seichar)")
		c.Flags().StringVar(&region, "region", "", "Demography region key (empty = normalized population)")
		c.Flags().StringVar(&regionsFile, "regions-file", "", "YAML region table (empty = built-in table)")
		c.Flags().StringVar(&diseaseFile, "disease-file", "", "YAML disease defaults file (empty = packaged defaults)")
		c.Flags().StringVar(&diseaseName, "disease", "", "Disease entry to use from the defaults file")
		c.Flags().StringArrayVar(&overrides, "set", nil, "Parameter override name=value (repeatable, aliases allowed)")
		c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}

	runCmd.Flags().Float64Var(&duration, "duration", 90, "Simulation duration in days")
	runCmd.Flags().Float64Var(&stepSize, "step", epi.DefaultStepSize, "Output grid spacing in days")
	runCmd.Flags().Float64Var(&population, "population", 0, "Explicit population (overrides demography)")
	runCmd.Flags().Float64Var(&seedFraction, "seed-fraction", epi.DefaultSeedFraction, "Initial infectious seed fraction")
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write an HTML chart of the run to this path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(paramsCmd)
}
