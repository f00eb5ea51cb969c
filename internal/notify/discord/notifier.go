// Package discord posts alerts to a Discord channel through the bot REST API.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/JakeFAU/menu-monitor/internal/notify"
)

// Config holds the bot token and destination channel.
type Config struct {
	Token     string
	ChannelID string
}

// sender is the subset of *discordgo.Session used here.
type sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Close() error
}

// Notifier sends one channel message per alert.
type Notifier struct {
	session   sender
	channelID string
}

// New creates a REST-only session; no gateway connection is opened.
func New(cfg Config) (*Notifier, error) {
	if cfg.Token == "" || cfg.ChannelID == "" {
		return nil, fmt.Errorf("discord token and channel_id are required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Notifier{session: session, channelID: cfg.ChannelID}, nil
}

// Kind implements notify.Notifier.
func (n *Notifier) Kind() string {
	return "discord"
}

// Notify posts "**<Monitor>** <message>".
func (n *Notifier) Notify(ctx context.Context, alert notify.Alert) error {
	content := fmt.Sprintf("**%s** %s", alert.Monitor, alert.Message)
	if _, err := n.session.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

// Close implements notify.Notifier.
func (n *Notifier) Close() error {
	if err := n.session.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}
