// Package orders resolves production-stage status for order numbers by
// searching the live production sheet and the archived dispatch sheets.
package orders

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage is one step of the production pipeline, bound to the sheet
// column holding its completion mark. The terminal stage additionally
// carries the column holding its dispatch date.
type Stage struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	Next       string `yaml:"next"`
	DateColumn string `yaml:"dateColumn"`
}

// StageTable is the ordered production pipeline.
type StageTable []Stage

// DefaultStageTable returns the built-in pipeline of the live sheet.
func DefaultStageTable() StageTable {
	return StageTable{
		{Name: "CUT", Column: "H", Next: "FUS"},
		{Name: "FUS", Column: "I", Next: "PAS"},
		{Name: "PAS", Column: "J", Next: "MAK"},
		{Name: "MAK", Column: "K", Next: "THR"},
		{Name: "THR", Column: "L", Next: "WAS"},
		{Name: "WAS", Column: "M", Next: "KAJ"},
		{Name: "KAJ", Column: "N", Next: "BUT"},
		{Name: "BUT", Column: "O", Next: "IRO"},
		{Name: "IRO", Column: "P", Next: "PCK"},
		{Name: "PCK", Column: "Q", Next: "DIS"},
		{Name: "DIS", Column: "R", DateColumn: "S"},
	}
}

// LoadStageTable reads a stage table override from a YAML file. An empty
// path returns the default table.
func LoadStageTable(path string) (StageTable, error) {
	if path == "" {
		return DefaultStageTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage table: %w", err)
	}

	var table StageTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse stage table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that the table is non-empty and that exactly the last
// stage is terminal (no next stage, a date column present).
func (t StageTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("stage table is empty")
	}

	for i, stage := range t {
		if stage.Name == "" || stage.Column == "" {
			return fmt.Errorf("stage %d: name and column are required", i)
		}
		terminal := i == len(t)-1
		if terminal {
			if stage.Next != "" {
				return fmt.Errorf("terminal stage %s must not declare a next stage", stage.Name)
			}
			if stage.DateColumn == "" {
				return fmt.Errorf("terminal stage %s must declare a date column", stage.Name)
			}
		} else {
			if stage.Next == "" {
				return fmt.Errorf("stage %s must declare a next stage", stage.Name)
			}
			if stage.DateColumn != "" {
				return fmt.Errorf("non-terminal stage %s must not declare a date column", stage.Name)
			}
		}
	}
	return nil
}

// ColumnIndex converts a spreadsheet column letter to its zero-based
// index (A=0, Z=25, AA=26).
func ColumnIndex(letter string) int {
	idx := 0
	for _, r := range strings.ToUpper(strings.TrimSpace(letter)) {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
