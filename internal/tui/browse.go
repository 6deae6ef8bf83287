// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/keychain/internal/i18n"
	"github.com/toeirei/keychain/internal/keystore"
	"github.com/toeirei/keychain/internal/logging"
	"github.com/toeirei/keychain/internal/render"
)

// clipboardWrite is swapped out by tests.
var clipboardWrite = clipboard.WriteAll

type browseModel struct {
	table       table.Model
	source      string
	all         keystore.Keychains
	visible     keystore.Keychains
	filter      string
	isFiltering bool
	status      string
	statusErr   bool
}

func newBrowseModel(source string, kcs keystore.Keychains) browseModel {
	m := browseModel{source: source, all: kcs}

	columns := []table.Column{{Title: "Host", Width: 28}}
	for _, d := range render.TableColumns {
		columns = append(columns, table.Column{Title: d.String(), Width: 16})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	m.rebuildTableRows()
	return m
}

// rebuildTableRows applies the filter to all keychains and refills the table.
func (m *browseModel) rebuildTableRows() {
	lowerFilter := strings.ToLower(m.filter)
	m.visible = nil
	var rows []table.Row
	for _, kc := range m.all {
		host := strings.Join(kc.Patterns(), " ")
		if m.filter != "" && !strings.Contains(strings.ToLower(host), lowerFilter) {
			continue
		}
		row := table.Row{host}
		for _, d := range render.TableColumns {
			v, _ := kc.Get(d)
			row = append(row, v)
		}
		rows = append(rows, row)
		m.visible = append(m.visible, kc)
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}

func (m browseModel) selected() (*keystore.Keychain, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return nil, false
	}
	return m.visible[i], true
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-8, 3))

	case tea.KeyMsg:
		if m.isFiltering {
			switch msg.Type {
			case tea.KeyEsc:
				m.isFiltering = false
				m.filter = ""
				m.rebuildTableRows()
			case tea.KeyEnter:
				m.isFiltering = false
			case tea.KeyBackspace:
				if len(m.filter) > 0 {
					_, size := utf8.DecodeLastRuneInString(m.filter)
					m.filter = m.filter[:len(m.filter)-size]
					m.rebuildTableRows()
				}
			case tea.KeyRunes:
				m.filter += string(msg.Runes)
				m.rebuildTableRows()
			}
			return m, nil
		}

		switch msg.String() {
		case "/":
			m.isFiltering = true
			m.filter = ""
			m.rebuildTableRows()
			return m, nil
		case "c":
			kc, ok := m.selected()
			if !ok {
				return m, nil
			}
			if err := clipboardWrite(render.Block(kc)); err != nil {
				m.status, m.statusErr = i18n.T("tui.copy_failed", err), true
			} else {
				m.status, m.statusErr = i18n.T("tui.copied", strings.Join(kc.Patterns(), " ")), false
			}
			return m, nil
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.filter != "" {
				m.filter = ""
				m.rebuildTableRows()
				return m, nil
			}
			return m, tea.Quit
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("tui.title", m.source, len(m.all))) + "\n\n")

	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("tui.empty")))
		b.WriteString(m.footerView())
		return docStyle.Render(b.String())
	}

	detail := ""
	if kc, ok := m.selected(); ok {
		detail = detailStyle.Render(strings.TrimRight(render.Block(kc), "\n"))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.table.View(), detail))
	b.WriteString(m.footerView())
	return docStyle.Render(b.String())
}

func (m browseModel) footerView() string {
	var filterStatus string
	switch {
	case m.isFiltering:
		filterStatus = i18n.T("tui.filter_editing", m.filter)
	case m.filter != "":
		filterStatus = i18n.T("tui.filter_active", m.filter)
	default:
		filterStatus = i18n.T("tui.filter_hint")
	}
	out := helpStyle.Render(fmt.Sprintf("\n%s  %s", i18n.T("tui.help"), filterStatus))
	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		out += "\n" + style.Render(m.status)
	}
	return out
}

// Browse runs the interactive browser over kcs until the user quits. Log
// output is discarded while the program owns the screen.
func Browse(source string, kcs keystore.Keychains, opts ...tea.ProgramOption) error {
	prev := logging.Output()
	logging.SetOutput(io.Discard)
	defer logging.SetOutput(prev)

	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(newBrowseModel(source, kcs), opts...).Run()
	return err
}
