package chatbot

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type TriggerType string

const (
	TriggerNone    TriggerType = ""
	TriggerDirect  TriggerType = "DM"
	TriggerMention TriggerType = "MENTION"
	TriggerPrefix  TriggerType = "PREFIX"
)

// InboundMessage is one chat-platform message, independent of the transport.
type InboundMessage struct {
	EventID     string
	UserID      string
	ChannelID   string
	Content     string
	IsDirect    bool
	MentionsBot bool
	AuthorIsBot bool
	BotUserID   string
}

// ParseTrigger decides whether the bot should answer and returns the query
// with the mention or prefix removed. Direct messages always trigger. In
// channels exactly one of mention or "<prefix> " must be present.
func ParseTrigger(msg InboundMessage, prefix string) (string, TriggerType, bool) {
	content := msg.Content
	rest, startsWithPrefix := cutPrefix(content, prefix)

	switch {
	case msg.IsDirect:
		return strings.TrimSpace(content), TriggerDirect, true
	case msg.MentionsBot && !startsWithPrefix:
		return stripMention(content, msg.BotUserID), TriggerMention, true
	case startsWithPrefix && !msg.MentionsBot:
		return strings.TrimSpace(rest), TriggerPrefix, true
	default:
		return "", TriggerNone, false
	}
}

// cutPrefix removes "<prefix> " from content, comparing case-insensitively
// rune by rune so case folding that changes byte length cuts correctly.
func cutPrefix(content, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	n := utf8.RuneCountInString(prefix)
	runes := []rune(content)
	if len(runes) <= n || runes[n] != ' ' {
		return "", false
	}
	if !strings.EqualFold(string(runes[:n]), prefix) {
		return "", false
	}
	return string(runes[n+1:]), true
}

func stripMention(content, botUserID string) string {
	if botUserID == "" {
		return strings.TrimSpace(content)
	}
	mention := regexp.MustCompile(`<@!?` + regexp.QuoteMeta(botUserID) + `>`)
	return strings.TrimSpace(mention.ReplaceAllString(content, ""))
}
