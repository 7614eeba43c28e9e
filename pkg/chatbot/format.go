package chatbot

import (
	"strings"
	"unicode/utf8"

	"marketing-assistant-be/pkg/store"
)

const (
	MaxMessageLength = 2000

	MsgTooLong     = "The response was too long for a single message. I will send it in multiple parts."
	MsgErrorReply  = "I apologize, but I encountered an error processing your message. Please try again later."
	MsgSendFailed  = "I encountered an error processing your request. Please try again later."
	MsgEmptyQuery  = "Please include a question with your message."
	sourcesHeading = "\n\nSources:\n"
)

// FormatReply renders a result as chat text. Failed results become the
// apology with the error detail appended.
func FormatReply(res store.Result) string {
	if res.Failed() {
		return MsgErrorReply + "\n\nError details: " + res.Error
	}

	reply := res.Content
	if len(res.Sources) > 0 {
		lines := make([]string, len(res.Sources))
		for i, s := range res.Sources {
			lines[i] = "• " + s
		}
		reply += sourcesHeading + strings.Join(lines, "\n")
	}
	return reply
}

// SplitMessage cuts content into consecutive parts of at most max runes.
func SplitMessage(content string, max int) []string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return []string{content}
	}

	var parts []string
	runes := []rune(content)
	for start := 0; start < len(runes); start += max {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
