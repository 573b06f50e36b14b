package app

import "charm.land/lipgloss/v2"

var (
	headerStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	trailingHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	rowStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true)
	cursorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	contentTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	contentBodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	emptyStateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	dividerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)
