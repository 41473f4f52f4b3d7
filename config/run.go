package config

import (
	"fmt"
	"os"
)

// Action is what happens to the selected photos after analysis.
type Action string

const (
	ActionReport Action = "report"
	ActionCopy   Action = "copy"
	ActionMove   Action = "move"
)

// RunOptions are the non-filter settings of a single invocation.
type RunOptions struct {
	InputDir     string
	Action       Action
	OutputDir    string
	ReportPath   string
	KeepFiltered bool
	Recursive    bool
	HashCache    string
	EnrichEXIF   bool
	DebugMode    bool
	LogPath      string
}

// Validate rejects invalid option combinations before any processing starts.
func (o RunOptions) Validate() error {
	info, err := os.Stat(o.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input directory does not exist: %s", o.InputDir)
		}
		return fmt.Errorf("cannot access input directory %s: %v", o.InputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", o.InputDir)
	}

	switch o.Action {
	case ActionReport:
	case ActionCopy, ActionMove:
		if o.OutputDir == "" {
			return fmt.Errorf("--output is required for %s action", o.Action)
		}
	default:
		return fmt.Errorf("unknown action %q (expected report, copy or move)", o.Action)
	}

	return nil
}
