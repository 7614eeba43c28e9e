// Package discord connects the chat front door to a Discord gateway session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/chatbot"

	"github.com/bwmarrin/discordgo"
)

// UserPrefix namespaces Discord user ids in the session store.
const UserPrefix = "discord:"

type MessageHandler interface {
	Handle(ctx context.Context, msg chatbot.InboundMessage)
}

// Bot is both the gateway listener and the chatbot.Transport for replies.
type Bot struct {
	session *discordgo.Session
	logger  logger.ILogger
	cancel  context.CancelFunc
}

func NewBot(token string, log logger.ILogger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("discord bot token is not configured")
	}
	if log == nil {
		log = logger.Nop()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Bot{session: session, logger: log}, nil
}

// Start opens the gateway and routes every MessageCreate to handler. Each
// message is handled in its own goroutine; the delivery guard dedupes
// gateway redeliveries.
func (b *Bot) Start(ctx context.Context, handler MessageHandler) error {
	ctx, b.cancel = context.WithCancel(ctx)

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("DISCORD", "Bot is ready", map[string]interface{}{
			"username": r.User.Username,
			"guilds":   len(r.Guilds),
		})
	})

	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		botID := ""
		if s.State != nil && s.State.User != nil {
			botID = s.State.User.ID
		}
		msg, ok := ToInbound(m, botID)
		if !ok {
			return
		}
		go handler.Handle(ctx, msg)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.session.Close()
}

func (b *Bot) Reply(ctx context.Context, msg chatbot.InboundMessage, content string) error {
	_, err := b.session.ChannelMessageSend(msg.ChannelID, content, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) Typing(ctx context.Context, msg chatbot.InboundMessage) error {
	return b.session.ChannelTyping(msg.ChannelID, discordgo.WithContext(ctx))
}

// ToInbound converts a gateway message. It reports false for messages that
// carry no author.
func ToInbound(m *discordgo.MessageCreate, botID string) (chatbot.InboundMessage, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return chatbot.InboundMessage{}, false
	}

	mentionsBot := false
	for _, u := range m.Mentions {
		if u != nil && u.ID == botID {
			mentionsBot = true
			break
		}
	}

	return chatbot.InboundMessage{
		EventID:     m.ID,
		UserID:      UserPrefix + m.Author.ID,
		ChannelID:   m.ChannelID,
		Content:     m.Content,
		IsDirect:    m.GuildID == "",
		MentionsBot: mentionsBot,
		AuthorIsBot: m.Author.Bot || m.Author.ID == botID,
		BotUserID:   botID,
	}, true
}
