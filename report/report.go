// Package report serializes a filtering run into a JSON document.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/omelkes/phaicull/config"
	"github.com/omelkes/phaicull/types"
)

// Document is the on-disk report layout: the run configuration followed by
// one entry per analyzed image.
type Document struct {
	Config  map[string]interface{} `json:"config"`
	Results []types.FilterResult   `json:"results"`
}

// Write saves the report as indented JSON at path.
func Write(path string, cfg config.FilterConfig, results []types.FilterResult) error {
	doc := Document{
		Config:  cfg.ReportMap(),
		Results: results,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize report: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write report to %s: %v", path, err)
	}
	return nil
}
