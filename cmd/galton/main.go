package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "galton",
		Short: "Galton board simulator",
		Long: `galton drops balls through Galton boards of height 5, 10, 50, 100
and 1000 and compares the observed distribution with the binomial
distribution and its normal approximation.

At 10, 100, ... 1000000 balls it writes sim_h<H>_b<I>.dat,
binom_h<H>_b<I>.dat and normal_h<H>_b<I>.dat into <root>/out.
Run 'galton init' once to create the output directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd)
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newRunCmd(),
		newHistoryCmd(),
		newPlotCmd(),
		newConfigCmd(),
	)
	return rootCmd
}
