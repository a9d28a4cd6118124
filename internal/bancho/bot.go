package bancho

import (
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// botUserID is the reserved id of the service bot. IRC-style entities
// carry negative ids so they can never collide with real accounts.
const botUserID = -1

// Bot is the always-online service account that owns announcements,
// chat commands and moderation messages.
type Bot struct {
	name string
}

func newBot(name string) *Bot {
	return &Bot{name: name}
}

// ID returns the reserved bot user id.
func (b *Bot) ID() int32 { return botUserID }

// Name returns the configured bot nickname.
func (b *Bot) Name() string { return b.name }

// Presence returns the wire presence advertised for the bot.
func (b *Bot) Presence() protocol.UserPresence {
	return protocol.UserPresence{
		UserID:      botUserID,
		IsIrc:       true,
		Name:        b.name,
		Timezone:    0,
		CountryCode: 0,
		Permissions: constants.PermNormal | constants.PermBAT,
	}
}

// Stats returns the wire stats advertised for the bot.
func (b *Bot) Stats() protocol.UserStats {
	return protocol.UserStats{
		UserID: botUserID,
		Status: protocol.StatusUpdate{
			Action: constants.StatusUnknown,
			Text:   "serving bancho",
		},
	}
}

// Message wraps content into a chat message sent by the bot.
func (b *Bot) Message(content, target string) protocol.Message {
	return protocol.Message{
		Sender:   b.name,
		Content:  content,
		Target:   target,
		SenderID: botUserID,
	}
}
