package bancho

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/prismosu/banchod/internal/clients"
)

// Commands is the bot command interpreter. Commands arrive as chat
// lines starting with '!' or as private messages to the bot.
type Commands struct {
	srv *Server
}

// NewCommands creates the interpreter.
func NewCommands(srv *Server) *Commands {
	return &Commands{srv: srv}
}

// Handle runs a command typed into a channel; replies go back into
// the same channel through the bot.
func (c *Commands) Handle(s *Session, channelName, text string) {
	replies := c.run(s, text)
	channel := c.srv.channels.ByName(channelName)
	if channel == nil {
		return
	}
	for _, line := range replies {
		channel.SendBotMessage(line)
	}
}

// HandlePrivate runs a command sent directly to the bot; replies come
// back as private messages.
func (c *Commands) HandlePrivate(s *Session, text string) {
	for _, line := range c.run(s, text) {
		s.Send(clients.RespSendMessage, c.srv.bot.Message(line, s.Name()))
	}
}

func (c *Commands) run(s *Session, text string) []string {
	text = strings.TrimPrefix(text, "!")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "help":
		return []string{
			"Available commands:",
			"!help - this listing",
			"!roll [max] - roll a number between 0 and max (default 100)",
			"!online - show how many players are online",
		}
	case "roll":
		limit := 100
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				limit = n
			}
		}
		return []string{fmt.Sprintf("%s rolls %d point(s)", s.Name(), rand.Intn(limit+1))}
	case "online":
		count := c.srv.cache.Usercount.Current()
		if count == 1 {
			return []string{"There is 1 player online."}
		}
		return []string{fmt.Sprintf("There are %d players online.", count)}
	default:
		return []string{fmt.Sprintf("Unknown command %q, try !help.", fields[0])}
	}
}
