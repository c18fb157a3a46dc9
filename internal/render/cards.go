package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

// StatCards renders the BMI, goal and level cards side by side
func StatCards(cards *service.StatCards, t Theme) string {
	if cards == nil {
		return ""
	}

	card := func(head, body string) string {
		return t.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
			t.CardHead.Render(head),
			t.CardBody.Render(body),
		))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("BMI", fmt.Sprintf("%.2f (%s)", cards.BMI, cards.BMICategory)),
		card("Goal", cards.Goal),
		card("Level", cards.Level),
	)
}
