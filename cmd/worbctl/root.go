package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "worbctl",
		Short: "worbctl drives a worb.World from a YAML scenario file",
	}
	root.AddCommand(newRunCmd(), newDumpCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var steps int
	var dt float64

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Load a scenario and step it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			if steps > 0 {
				scenario.Steps = steps
			}
			if dt > 0 {
				scenario.Dt = dt
			}

			w, err := BuildWorld(scenario)
			if err != nil {
				return errors.Wrap(err, "building world")
			}

			log.Printf("worbctl: running %d steps at h=%v", scenario.Steps, scenario.Dt)
			for i := 0; i < scenario.Steps; i++ {
				w.Step(scenario.Dt)
			}
			log.Printf("worbctl: finished at t=%.4f, step=%d", w.Time, w.StepCount)

			w.Dump(os.Stdout)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "override the scenario's step count")
	cmd.Flags().Float64Var(&dt, "dt", 0, "override the scenario's step size")
	return cmd
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <scenario.yaml>",
		Short: "Load a scenario and print its initial state without stepping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			w, err := BuildWorld(scenario)
			if err != nil {
				return errors.Wrap(err, "building world")
			}
			w.Dump(os.Stdout)
			return nil
		},
	}
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "worbctl: %+v\n", err)
		os.Exit(1)
	}
}
