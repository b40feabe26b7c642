package app

import "charm.land/lipgloss/v2"

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paneTitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	paneTitleDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	inactiveStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true)
	badgeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	badgeEmptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	linkStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Underline(true)
	activeCommentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	commentStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	copiedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Italic(true)
	loadingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Italic(true)
	completeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true).Padding(0, 1)
	dialogStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("69")).
				Padding(0, 1)
	toastInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)
