package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/msgslot/internal/slot"
)

// RenderSummary renders the one-box device summary shown by `msgslot stat`
// and at the top of the monitor.
func RenderSummary(stat *slot.DeviceStat) string {
	instances := len(stat.Instances)
	lines := []string{
		Title.Render(fmt.Sprintf("%s (major %d)", stat.Name, stat.Major)),
		field("policy", policyStyle(stat.Policy).Render(stat.Policy)),
		field("open handles", Value.Render(fmt.Sprint(stat.OpenHandles))),
		field("channels", Value.Render(fmt.Sprint(stat.Channels))+Muted.Render(fmt.Sprintf(" in %d of %d instances", instances, slot.MaxInstances))),
	}
	return Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderStat renders the summary followed by one line per channel.
func RenderStat(stat *slot.DeviceStat) string {
	var sb strings.Builder
	sb.WriteString(RenderSummary(stat))
	sb.WriteString("\n")

	if len(stat.Instances) == 0 {
		sb.WriteString(Muted.Render("no channels"))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, in := range stat.Instances {
		sb.WriteString(Label.Render(fmt.Sprintf("instance %d", in.Instance)))
		sb.WriteString("\n")
		for _, ch := range in.Channels {
			sb.WriteString(fmt.Sprintf("  channel %-10d %s\n", ch.ID, describeLength(ch.Length)))
		}
	}
	return sb.String()
}

func field(label, value string) string {
	return Label.Render(fmt.Sprintf("%-13s", label)) + value
}

func describeLength(n int) string {
	if n == 0 {
		return Muted.Render("empty")
	}
	return fmt.Sprintf("%d/%d bytes", n, slot.MaxMessageLen)
}
