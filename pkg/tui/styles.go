package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

const sidebarWidth = 28

type styles struct {
	sidebar         lipgloss.Style
	sidebarTitle    lipgloss.Style
	sidebarItem     lipgloss.Style
	sidebarActive   lipgloss.Style
	sidebarSelected lipgloss.Style
	sidebarEmpty    lipgloss.Style
	sidebarFooter   lipgloss.Style

	header     lipgloss.Style
	userLabel  lipgloss.Style
	botLabel   lipgloss.Style
	userText   lipgloss.Style
	attachment lipgloss.Style
	errText    lipgloss.Style
	stopped    lipgloss.Style
	welcome    lipgloss.Style
	suggestion lipgloss.Style
	statusBar  lipgloss.Style
	statusWarn lipgloss.Style
	hint       lipgloss.Style
}

func newStyles(theme domain.Theme) styles {
	accent := lipgloss.Color("39")
	subtle := lipgloss.Color("244")
	errRed := lipgloss.Color("161")
	border := lipgloss.Color("238")
	if theme == domain.ThemeLight {
		accent = lipgloss.Color("26")
		subtle = lipgloss.Color("245")
		errRed = lipgloss.Color("124")
		border = lipgloss.Color("252")
	}

	return styles{
		sidebar: lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(border).
			PaddingLeft(1),
		sidebarTitle:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		sidebarItem:     lipgloss.NewStyle().Foreground(subtle),
		sidebarActive:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		sidebarSelected: lipgloss.NewStyle().Reverse(true),
		sidebarEmpty:    lipgloss.NewStyle().Faint(true).Italic(true),
		sidebarFooter:   lipgloss.NewStyle().Faint(true),

		header:     lipgloss.NewStyle().Bold(true).Foreground(accent).PaddingLeft(1),
		userLabel:  lipgloss.NewStyle().Bold(true),
		botLabel:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		userText:   lipgloss.NewStyle(),
		attachment: lipgloss.NewStyle().Faint(true).Italic(true),
		errText:    lipgloss.NewStyle().Foreground(errRed),
		stopped:    lipgloss.NewStyle().Foreground(subtle).Italic(true),
		welcome:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		suggestion: lipgloss.NewStyle().Foreground(subtle),
		statusBar:  lipgloss.NewStyle().Faint(true).PaddingLeft(1),
		statusWarn: lipgloss.NewStyle().Foreground(errRed).PaddingLeft(1),
		hint:       lipgloss.NewStyle().Faint(true),
	}
}

func glamourStyle(theme domain.Theme) string {
	if theme == domain.ThemeLight {
		return "light"
	}
	return "dark"
}
