package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/scene"
)

// RenderInitiative formats the turn order.
func RenderInitiative(actors []scene.ActorView, color bool) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(paint(color, BrightYellow, "The turn order is as follows:"))
	b.WriteString("\n")
	for _, a := range actors {
		fmt.Fprintf(&b, "%-20s (IV %d)\n", a.Name, a.Initiative)
	}
	return b.String()
}

// RenderState formats the per-turn state lines.
func RenderState(lines []string, color bool) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(paint(color, BrightYellow, "Current state:"))
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(paint(color, Dim, l))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSummary formats the closing table.
func RenderSummary(res scene.Result, color bool) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(paint(color, BrightYellow, closing(res.Outcome)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-20s %12s %12s %10s %10s\n", "Actor", "Status", "Damage Dealt", "Downed?", "Killed?")
	for _, s := range res.Summaries {
		row := fmt.Sprintf("%-20s %12s %12d %10s %10s",
			s.Name, s.Status, s.DamageDealt, strconv.FormatBool(s.Downed), strconv.FormatBool(s.Killed))
		switch s.Status {
		case scene.StatusDead:
			row = paint(color, Red, row)
		case scene.StatusUnconscious:
			row = paint(color, Yellow, row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func closing(o scene.Outcome) string {
	switch o {
	case scene.OutcomeVictory:
		return "The battle draws to a close... the monster has fallen."
	case scene.OutcomeDefeat:
		return "The battle draws to a close... the hero has fallen."
	case scene.OutcomeStalemate:
		return "The battle draws to a close... neither side can finish it."
	default:
		return "The battle is abandoned."
	}
}

func paint(on bool, color, text string) string {
	if !on {
		return text
	}
	return Colorize(color, text)
}
