package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"rentalempire/internal/game"
)

type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts notifications to a channel from a background goroutine.
// Notify never blocks: when the queue is full the message is dropped.
type Discord struct {
	sender    channelSender
	channelID string
	log       *slog.Logger
	queue     chan string

	mu      sync.Mutex
	dropped int
}

func NewDiscord(token, channelID string, logger *slog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return newDiscord(session, channelID, logger, 64), nil
}

func newDiscord(sender channelSender, channelID string, logger *slog.Logger, buffer int) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		sender:    sender,
		channelID: channelID,
		log:       logger,
		queue:     make(chan string, buffer),
	}
}

func (d *Discord) Notify(message string, severity game.Severity) {
	content := fmt.Sprintf("%s %s", severityIcon(severity), message)
	select {
	case d.queue <- content:
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
	}
}

func (d *Discord) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Run delivers queued messages until ctx is done.
func (d *Discord) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-d.queue:
			if _, err := d.sender.ChannelMessageSend(d.channelID, msg); err != nil {
				d.log.Warn("discord send failed", "channel_id", d.channelID, "err", err)
			}
		}
	}
}

func severityIcon(s game.Severity) string {
	switch s {
	case game.SeveritySuccess:
		return "[+]"
	case game.SeverityWarning:
		return "[!]"
	case game.SeverityError:
		return "[x]"
	default:
		return "[i]"
	}
}
