package orders

import (
	"fmt"
	"strings"
)

// ResolveStatus interprets one live-sheet row into a human-readable
// status. Every stage is scanned and the latest stage in table order
// with any value wins; stages are often populated non-contiguously, so
// stopping at the first gap would under-report progress.
func ResolveStatus(row []string, table StageTable) string {
	current := -1
	for i, stage := range table {
		if stageValue(row, stage.Column) != "" {
			current = i
		}
	}

	if current == -1 {
		return "Order is currently under process."
	}

	stage := table[current]
	if current == len(table)-1 {
		date := stageValue(row, stage.DateColumn)
		return fmt.Sprintf("Order is dispatched from HO on %s.", date)
	}

	return fmt.Sprintf("Order is currently completed %s stage and processed to %s stage.", stage.Name, stage.Next)
}

func stageValue(row []string, column string) string {
	idx := ColumnIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
