// Command circuitedit is a TUI editor for breadboard circuits.
package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuitfile"
	"github.com/ha1tch/circuitsim/pkg/editor"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "circuitedit [file]",
	Short: "Interactive breadboard circuit editor",
	Long: `Place components, wire their pins and test the circuit in the terminal.

Without a file the last auto-saved board is restored. Settings are read from
~/.circuitedit.yaml and CIRCUITEDIT_* environment variables.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEditor,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", ConfigPath(), "config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, cfgErr := LoadConfig(configPath)
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("config ignored", zap.Error(cfgErr))
	}

	ed := newEditor(cfg, logger)
	ed.session = editor.NewSession(editor.Options{
		HistoryDepth:     cfg.HistoryDepth,
		HistoryDelay:     cfg.HistoryDelay,
		AutosaveInterval: cfg.AutosaveInterval,
		Store:            circuitfile.FileStore{Dir: cfg.AutosaveDir},
		Logger:           logger,
	}, ed.showMessage)

	// Check command line
	if len(args) == 1 {
		g, snap, err := circuitfile.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		name := snap.Name
		if name == "" {
			name = circuitfile.NameFromPath(args[0])
		}
		ed.session.LoadGraph(g, args[0], name)
	} else {
		ed.session.RestoreAutosave()
	}
	if cfgErr != nil {
		ed.showMessage("Config file ignored: "+cfgErr.Error(), editor.MsgWarning)
	}

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()
	screen.Clear()
	ed.screen = screen

	watcher, err := newFileWatcher(logger, func(fc fileChanged) {
		screen.PostEvent(tcell.NewEventInterrupt(fc))
	})
	if err != nil {
		logger.Warn("file watching disabled", zap.Error(err))
	} else {
		ed.watcher = watcher
		defer watcher.Close()
		ed.watchCurrent()
	}

	ed.fitView()
	ed.run()

	screen.Fini()
	ed.session.Close()
	if err := SaveConfig(configPath, ed.config); err != nil {
		logger.Warn("config not saved", zap.Error(err))
	}
	return nil
}
