package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

func cycleCmd() *cobra.Command {
	var steps int
	var frequency, confidence float64

	cmd := &cobra.Command{
		Use:   "cycle [term]",
		Short: "Submit one judgment and step the reasoner, printing a summary line per step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(args[0], steps, frequency, confidence)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 10, "number of cycle steps to run after submitting the term")
	cmd.Flags().Float64Var(&frequency, "frequency", 1.0, "truth-value frequency for the submitted judgment")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.9, "truth-value confidence for the submitted judgment")

	return cmd
}

func runCycle(input string, steps int, frequency, confidence float64) error {
	cfg := config.DefaultConfig()
	mem, cycle := buildReasoner(cfg, logger)

	reader := term.NewReader()
	parsed, err := reader.Parse(input)
	if err != nil {
		return fmt.Errorf("parsing term: %w", err)
	}

	now := mem.Clock().Now()
	b := budget.New(0.8, 0.8, 0.5, now)
	t := task.New(task.Sentence{
		Term:        parsed,
		Punctuation: task.Judgment,
		Truth:       &task.Truth{Frequency: frequency, Confidence: confidence},
		Stamp:       task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{mem.Serial().Next()}},
	}, b, true)

	mem.AddTask(t, false)
	fmt.Printf("submitted %s\n", parsed.String())

	for i := 0; i < steps; i++ {
		n := cycle.Step()
		fmt.Printf("step %d: %d premises executed, concepts=%d, logical_time=%d\n",
			i+1, n, mem.Store().Size(), mem.Clock().Now())
	}

	return nil
}
