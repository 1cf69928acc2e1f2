// feedback-console is the terminal feedback desk: a board over an in-memory
// feedback collection and the submission form.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/NomadCrew/feedback-desk/internal/console"
	"github.com/NomadCrew/feedback-desk/internal/events"
	"github.com/NomadCrew/feedback-desk/internal/store/memory"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/models/feedback/service"
	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var seedPath string
	var latency, confirm time.Duration

	flagSet := pflag.NewFlagSet("feedback-console", pflag.ContinueOnError)
	flagSet.StringVar(&seedPath, "seed", "config/seed/feedback.yaml", "YAML file with the initial feedback (empty for none)")
	flagSet.DurationVar(&latency, "latency", 1500*time.Millisecond, "simulated submission latency")
	flagSet.DurationVar(&confirm, "confirm", submission.DefaultConfirmation, "how long the submission confirmation stays up")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	// Log lines would tear the alternate screen.
	logger.UseLogger(zap.NewNop().Sugar())

	var seed []*types.Feedback
	if seedPath != "" {
		var err error
		seed, err = memory.LoadSeed(seedPath)
		if err != nil {
			return fmt.Errorf("cannot load feedback from %s: %w", seedPath, err)
		}
	}

	publisher := events.NewLocalPublisher()
	svc := service.NewFeedbackService(memory.NewFeedbackStore(seed...), publisher, nil, service.Config{
		SubmitLatency: latency,
		Confirmation:  confirm,
	})

	program := tea.NewProgram(console.NewModel(svc), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
