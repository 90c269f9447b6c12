package notifier

import (
	"fmt"
	"strings"
	"time"
)

// FormatCycleSummary renders one optimization pass for the operator chat.
func FormatCycleSummary(evaluated, updated, paused, skipped, failed int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>SmartBid cycle</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Evaluated: %d\n", evaluated))
	b.WriteString(fmt.Sprintf("Bids updated: %d\n", updated))
	b.WriteString(fmt.Sprintf("Paused: %d\n", paused))
	b.WriteString(fmt.Sprintf("Skipped: %d\n", skipped))
	if failed > 0 {
		b.WriteString(fmt.Sprintf("❌ Failed: %d\n", failed))
	}
	return b.String()
}
