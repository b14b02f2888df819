// Package discord is the thin glue between the Discord gateway and the
// command router. It parses prefixed messages into router.Commands and
// sends reply chunks back; everything interesting happens in the router.
package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jeanpaul/goalkeeper/internal/router"
)

type Bot struct {
	session *discordgo.Session
	router  *router.Router
	prefix  string
	log     *zap.Logger
}

func New(token, prefix string, r *router.Router, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{session: session, router: r, prefix: prefix, log: log}
	session.AddHandler(b.onMessage)
	return b, nil
}

// Start opens the gateway connection and returns once connected.
func (b *Bot) Start() error { return b.session.Open() }

// Stop closes the gateway connection.
func (b *Bot) Stop() error { return b.session.Close() }

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}

	body := strings.TrimPrefix(m.Content, b.prefix)
	name, args, _ := strings.Cut(body, " ")
	if name == "" {
		return
	}

	cmd := router.Command{
		Name:   name,
		Args:   strings.TrimSpace(args),
		Author: m.Author.Username,
	}
	reply := b.router.HandleCommand(context.Background(), cmd)

	for _, chunk := range reply.Chunks {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			b.log.Error("sending reply failed",
				zap.String("channel", m.ChannelID),
				zap.Error(err))
		}
	}
}
