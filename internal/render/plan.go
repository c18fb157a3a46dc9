package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// Body renders a tab's markdown for a terminal of the given width. Falls back
// to plain wrapped text when the markdown renderer fails.
func Body(plan *domain.FitnessPlan, tab Tab, width int, t Theme) string {
	md := Markdown(plan, tab)
	if md == "" {
		return t.Subtle.Render("No plan yet. Run `coach generate` first.")
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return indent.String(wordwrap.String(md, width-2), 2)
}

// TabBar renders the tab headers with the active one highlighted
func TabBar(active Tab, t Theme) string {
	var tabs []string
	for _, tab := range Tabs {
		style := t.Tab
		if tab == active {
			style = t.TabOn
		}
		tabs = append(tabs, style.Render(tab.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// Summary renders the header of the plan view: greeting, stat cards and quote
func Summary(s *service.PlanSummary, width int, t Theme) string {
	var parts []string
	if s.UserData != nil {
		parts = append(parts, t.Title.Render(fmt.Sprintf("%s's Fitness Plan", s.UserData.Name)))
	}
	if cards := StatCards(s.Stats, t); cards != "" {
		parts = append(parts, cards)
	}
	if s.Quote != "" {
		parts = append(parts, t.Quote.Render(wordwrap.String(fmt.Sprintf("%q", s.Quote), width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SavedPlans renders the saved-plan history, one line per entry
func SavedPlans(entries []domain.SavedPlanEntry, width int, t Theme) string {
	if len(entries) == 0 {
		return t.Subtle.Render("No saved plans yet.")
	}

	var b strings.Builder
	b.WriteString(t.Title.Render(fmt.Sprintf("Saved Plans (%d)", len(entries))))
	b.WriteString("\n")
	for i, entry := range entries {
		line := fmt.Sprintf("[%d] %s - %s, %s", i, entry.UserData.Name,
			entry.UserData.GoalLabel(), entry.UserData.FitnessLevel)
		if width > 0 {
			line = truncate.StringWithTail(line, uint(max(width-22, 10)), "...")
		}
		b.WriteString(line)
		b.WriteString("  ")
		b.WriteString(t.Subtle.Render(entry.SavedAt.Local().Format(time.DateTime)))
		b.WriteString("\n")
	}
	return b.String()
}
