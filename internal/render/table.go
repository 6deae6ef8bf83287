// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/keychain/internal/keystore"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	hostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TableColumns are the directives shown as columns by Table.
var TableColumns = []keystore.Directive{
	keystore.DirectiveHostName,
	keystore.DirectiveUser,
	keystore.DirectivePort,
	keystore.DirectiveProxyJump,
	keystore.DirectiveIdentityFile,
}

// Table renders a styled overview with one row per keychain.
func Table(kcs keystore.Keychains) string {
	header := []string{"Host"}
	for _, d := range TableColumns {
		header = append(header, d.String())
	}
	rows := [][]string{header}
	for _, kc := range kcs {
		row := []string{strings.Join(kc.Patterns(), " ")}
		for _, d := range TableColumns {
			v, _ := kc.Get(d)
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, 0, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := lipgloss.NewStyle().Width(widths[i] + 2)
			switch {
			case r == 0:
				style = style.Inherit(headerStyle)
			case i == 0:
				style = style.Inherit(hostStyle)
			case cell == "":
				cell = "-"
				style = style.Inherit(dimStyle)
			}
			cells[i] = style.Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}
