package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"github.com/corey/bbfs/internal/domain/status"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorItalic = "\033[3m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

var (
	reBold   = regexp.MustCompile(`\*([^*\n]+)\*`)
	reMono   = regexp.MustCompile("`([^`\n]+)`")
	reItalic = regexp.MustCompile(`(?m)^(\s*)_(.+)_$`)
)

// render turns the report's lightweight emphasis into ANSI styling:
// *bold*, `mono` and whole-line _italic_.
func render(text string) string {
	text = reBold.ReplaceAllString(text, colorBold+"$1"+colorReset)
	text = reMono.ReplaceAllString(text, colorCyan+"$1"+colorReset)
	text = reItalic.ReplaceAllString(text, "$1"+colorItalic+"$2"+colorReset)
	return text
}

// formatPositions lists each character position's digits, most frequent
// first. Positions are 1-based for display.
//
//	*Digits by Position:*
//	   #1: `1`×3 `7`×1
func formatPositions(a *bbfs.Analysis) string {
	if len(a.Positions) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n*Digits by Position:*\n")
	for _, i := range a.PositionIndexes() {
		fmt.Fprintf(&sb, "   #%d:", i+1)
		for _, rd := range a.Positions[i] {
			fmt.Fprintf(&sb, " `%d`×%d", rd.Digit, rd.Count)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ bbfs daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:    %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Uptime:    %s\n", h.Uptime))
	sb.WriteString(fmt.Sprintf("  Messages:  %d\n", h.Messages))
	sb.WriteString(fmt.Sprintf("  Analyses:  %d\n", h.Analyses))
	sb.WriteString(fmt.Sprintf("  Inbox:     %d reports\n", h.InboxReports))
	if h.HTTPPort != 0 {
		sb.WriteString(fmt.Sprintf("  HTTP:      http://localhost:%d\n", h.HTTPPort))
	}
	return sb.String()
}

// formatStatus shows the most recent analysis recorded in the status file.
func formatStatus(sd *status.StatusData) string {
	if sd.BBFS == "" {
		return fmt.Sprintf("  Last:      %s (%s)\n", sd.Outcome, sd.Source)
	}
	return fmt.Sprintf("  Last:      %sBBFS %s%s  mirror %s  (%d entries, %s)\n",
		colorBold, sd.BBFS, colorReset, sd.Mirror, sd.Entries, sd.Source)
}

// formatReply prints each bot message rendered, separated by a blank line,
// followed by the upload ID when one was stored.
func formatReply(r *chat.Reply) string {
	if len(r.Messages) == 0 && r.UploadID == "" {
		return colorGray + "(no reply)" + colorReset + "\n"
	}
	var sb strings.Builder
	for i, m := range r.Messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(render(m))
		sb.WriteString("\n")
	}
	if r.UploadID != "" {
		sb.WriteString(fmt.Sprintf("\n%supload:%s %s\n", colorGray, colorReset, r.UploadID))
	}
	return sb.String()
}
