package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chime/internal/config"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb"))
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	bannerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#92400e")).Background(lipgloss.Color("#fef3c7")).Padding(0, 1)
	alertStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#991b1b"))
	overdueBadge   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#991b1b")).Background(lipgloss.Color("#fecaca")).Padding(0, 1)
	completedBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#166534")).Background(lipgloss.Color("#bbf7d0")).Padding(0, 1)
	doneNameStyle  = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#6b7280"))
)

var fieldLabels = [fieldCount]string{"Task name", "Date", "Time"}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Task Scheduler"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Organize your tasks with reminders"))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(bannerStyle.Render("🔔 " + m.banner))
		b.WriteString("\n\n")
	}

	if m.mode == modePermission {
		b.WriteString("Allow desktop notifications for task reminders? (y/n)\n\n")
	}

	b.WriteString(fmt.Sprintf("Scheduled Tasks (%d)\n", len(m.tasks)))
	if len(m.tasks) == 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("No tasks scheduled yet. Press '%s' to add your first task.", keyLabel(m.keys.Add))))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	if m.mode == modeAdd || m.mode == modeAlert {
		b.WriteString("\n")
		b.WriteString(m.renderForm())
	}
	if m.mode == modeAlert {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(m.alert))
		b.WriteString(subtleStyle.Render("  (press any key)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.keys))

	return b.String()
}

func (m Model) renderTaskList() string {
	now := m.now()
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		name := t.Name
		if t.Completed {
			checkbox = "[x]"
			name = doneNameStyle.Render(name)
		}

		line := fmt.Sprintf("%s %s %s  %s", cursor, checkbox, name, subtleStyle.Render(t.DisplayDue()))
		if t.Overdue(now) {
			line += " " + overdueBadge.Render("OVERDUE")
		}
		if t.Completed {
			line += " " + completedBadge.Render("COMPLETED")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString("Add New Task\n")
	for i, in := range m.inputs {
		prefix := " "
		if i == m.focus && m.mode == modeAdd {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-9s %s\n", prefix, fieldLabels[i]+":", in.View()))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return subtleStyle.Render(fmt.Sprintf("%s/%s move • %s add • %s toggle • %s delete • %s quit",
		keyLabel(k.Up), keyLabel(k.Down), keyLabel(k.Add), keyLabel(k.Toggle), keyLabel(k.Delete), keyLabel(k.Quit)))
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
