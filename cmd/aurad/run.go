package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/command"
	"github.com/elitecommand/aura-session/internal/config"
	"github.com/elitecommand/aura-session/internal/orchestrator"
	"github.com/elitecommand/aura-session/internal/settings"
)

var (
	runUser       string
	runSettingsDB string
	runSeed       int64
	runPassive    bool
	runContext    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive adaptive session",
	Long: `Starts the capture loop against the synthetic signal source and
accepts feedback on stdin:

  mirror <text>   ambient style/layout feedback
  edit <text>     directed change to the context element
  undo            revert the last adaptation
  state           print the current UI state and theme vars
  quit            end the session`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&runUser, "user", "local", "user id for settings and backend session")
	runCmd.Flags().StringVar(&runSettingsDB, "settings-db", "", "path to the user settings database")
	runCmd.Flags().Int64Var(&runSeed, "seed", time.Now().UnixNano(), "synthetic source seed")
	runCmd.Flags().BoolVar(&runPassive, "passive", false, "opt in to passive biometric adaptation")
	runCmd.Flags().StringVar(&runContext, "context", "", "element id that 'this' refers to in edit feedback")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	userSettings, store, err := loadSettings()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	est := syntheticEstimators(runSeed)
	sys := orchestrator.New(cfg, est, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sys.Initialize(ctx, runUser, userSettings); err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}
	defer sys.Shutdown(context.Background())

	if err := sys.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	fmt.Println("AURA session ready.")
	if sys.SessionID() != "" {
		fmt.Printf("  backend session: %s\n", sys.SessionID())
	}
	fmt.Println("Type feedback (or 'quit' to exit):")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := dispatch(sys, line); err != nil {
			logger.Warn("command failed", zap.Error(err))
		}
	}
}

func dispatch(sys *orchestrator.System, line string) error {
	switch {
	case line == "undo":
		if sys.Revert() {
			fmt.Println("reverted")
		} else {
			fmt.Println("nothing to revert")
		}
		return nil

	case line == "state":
		return printState(sys)

	case strings.HasPrefix(line, "edit "):
		return submit(sys, strings.TrimPrefix(line, "edit "), command.ModeEdit)

	case strings.HasPrefix(line, "mirror "):
		return submit(sys, strings.TrimPrefix(line, "mirror "), command.ModeMirror)

	default:
		// bare text is ambient feedback
		return submit(sys, line, command.ModeMirror)
	}
}

func submit(sys *orchestrator.System, text string, mode command.EntryMode) error {
	intent, err := sys.SubmitFeedback(text, mode, runContext)
	if err != nil {
		return err
	}
	if len(intent.DetectedPatterns) == 0 {
		fmt.Println("no patterns recognized")
		return nil
	}
	fmt.Printf("matched %s (confidence %.2f)\n",
		strings.Join(intent.DetectedPatterns, ", "), intent.Confidence)
	return nil
}

func printState(sys *orchestrator.System) error {
	out, err := json.MarshalIndent(sys.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadSettings() (settings.Settings, *settings.Store, error) {
	if runSettingsDB == "" {
		s := settings.DefaultSettings(runUser)
		s.PassiveTierEnabled = runPassive
		return s, nil, nil
	}

	store, err := settings.Open(runSettingsDB)
	if err != nil {
		return settings.Settings{}, nil, fmt.Errorf("open settings: %w", err)
	}
	s, err := store.Load(runUser)
	if err != nil {
		store.Close()
		return settings.Settings{}, nil, fmt.Errorf("load settings: %w", err)
	}
	if runPassive && !s.PassiveTierEnabled {
		s.PassiveTierEnabled = true
		if err := store.Save(s); err != nil {
			logger.Warn("persist settings", zap.Error(err))
		}
	}
	return s, store, nil
}

func syntheticEstimators(seed int64) orchestrator.Estimators {
	est := capture.NewSyntheticEstimator(seed)
	return orchestrator.Estimators{
		Source:  capture.NewSyntheticSource(),
		Face:    est,
		Emotion: est,
		Gaze:    est,
	}
}
