package server

import (
	"fmt"
	"strings"

	"github.com/fenggwsx/ReminderBot/internal/storage"
)

// DisplayLayout formats event dates in replies.
const DisplayLayout = "2006-01-02 15:04:05"

var markdownEscaper = strings.NewReplacer(
	"-", `\-`,
	"!", `\!`,
	".", `\.`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
)

// EscapeMarkdown backslash-escapes the characters the strict markdown dialect
// reserves: - ! . [ ] ( )
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

func listHeader(amount int, filter storage.DateFilter) string {
	amountText := "All"
	if amount > 0 {
		amountText = fmt.Sprint(amount)
	}
	filterText := ""
	if filter != storage.DateFilterNone {
		filterText = string(filter) + " "
	}
	return fmt.Sprintf("%s %sevents:", amountText, filterText)
}

func renderEventList(amount int, filter storage.DateFilter, events []storage.EventSummary) string {
	lines := make([]string, 0, len(events)+1)
	lines = append(lines, "*"+listHeader(amount, filter)+"*\n")
	for _, event := range events {
		lines = append(lines, fmt.Sprintf(`- [%s] *%s* _\<%d\>_`, event.Date.Format(DisplayLayout), event.Title, event.ID))
	}
	return EscapeMarkdown(strings.Join(lines, "\n"))
}

func renderEvent(event storage.Event) string {
	return EscapeMarkdown(fmt.Sprintf("_%s_\n*%s*\n\n%s", event.Date.Format(DisplayLayout), event.Title, event.Text))
}

// renderEventListPlain is the unformatted version of renderEventList.
func renderEventListPlain(amount int, filter storage.DateFilter, events []storage.EventSummary) string {
	lines := make([]string, 0, len(events)+1)
	lines = append(lines, listHeader(amount, filter)+"\n")
	for _, event := range events {
		lines = append(lines, fmt.Sprintf("- [%s] %s <%d>", event.Date.Format(DisplayLayout), event.Title, event.ID))
	}
	return strings.Join(lines, "\n")
}

func renderEventPlain(event storage.Event) string {
	return fmt.Sprintf("%s\n%s\n\n%s", event.Date.Format(DisplayLayout), event.Title, event.Text)
}
