package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ToolRow is one line of the check table.
type ToolRow struct {
	Status string // OK, MISS, SKIP
	Name   string
	Detail string
}

// Status tags used in ToolRow.Status.
const (
	StatusOK   = "OK"
	StatusMiss = "MISS"
	StatusSkip = "SKIP"
)

// ToolTable renders probe results as a bordered table.
func ToolTable(rows []ToolRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("STATUS", "TOOL", "DETAIL").
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(titleStyle)
			}
			if col == 0 && row >= 0 && row < len(rows) {
				switch rows[row].Status {
				case StatusOK:
					return base.Inherit(doneStyle)
				case StatusMiss:
					return base.Inherit(errorStyle)
				default:
					return base.Inherit(warnStyle)
				}
			}
			return base
		})
	for _, r := range rows {
		t.Row(statusTag(r.Status), r.Name, r.Detail)
	}
	return t.String()
}

func statusTag(s string) string {
	switch s {
	case StatusOK:
		return "[ OK ]"
	case StatusMiss:
		return "[MISS]"
	default:
		return "[" + s + "]"
	}
}
