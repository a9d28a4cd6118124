package bancho

import (
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

const truncationMarker = "... (truncated)"

// Channel is one chat room. Members are held as weak session
// references keyed by token; a session leaving removes itself before
// its teardown completes.
type Channel struct {
	name   string
	topic  string
	owner  string
	public bool

	readPerms  constants.Permissions
	writePerms constants.Permissions

	mu        sync.RWMutex
	moderated bool
	members   map[uuid.UUID]*Session

	server *Server
}

func newChannel(server *Server, name, topic, owner string, public bool, read, write constants.Permissions) *Channel {
	return &Channel{
		name:       name,
		topic:      topic,
		owner:      owner,
		public:     public,
		readPerms:  read,
		writePerms: write,
		members:    make(map[uuid.UUID]*Session),
		server:     server,
	}
}

// Name returns the channel name, including the leading '#'.
func (c *Channel) Name() string { return c.name }

// Topic returns the channel topic line.
func (c *Channel) Topic() string { return c.topic }

// Public reports whether the channel is advertised at login.
func (c *Channel) Public() bool { return c.public }

// CanRead reports whether the permission mask may join.
func (c *Channel) CanRead(p constants.Permissions) bool {
	return c.readPerms == 0 || p&c.readPerms != 0
}

// CanWrite reports whether the permission mask may speak.
func (c *Channel) CanWrite(p constants.Permissions) bool {
	return c.writePerms == 0 || p&c.writePerms != 0
}

// SetModerated toggles moderated mode; while on, only privileged
// members may speak.
func (c *Channel) SetModerated(on bool) {
	c.mu.Lock()
	c.moderated = on
	c.mu.Unlock()
}

// MemberCount returns the current member count.
func (c *Channel) MemberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// Members returns a stable snapshot of the member set.
func (c *Channel) Members() []*Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Session, 0, len(c.members))
	for _, s := range c.members {
		out = append(out, s)
	}
	return out
}

// Contains reports whether the session is a member.
func (c *Channel) Contains(s *Session) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.members[s.Token()]
	return ok
}

// wire returns the channel as seen by the panel, with the live count.
func (c *Channel) wire() protocol.Channel {
	return protocol.Channel{
		Name:      c.name,
		Topic:     c.topic,
		Owner:     c.owner,
		UserCount: int16(c.MemberCount()),
	}
}

// Add joins a session to the channel. Returns false when the session
// lacks read permission.
func (c *Channel) Add(s *Session) bool {
	if !c.CanRead(s.Permissions()) {
		return false
	}

	c.mu.Lock()
	if _, ok := c.members[s.Token()]; ok {
		c.mu.Unlock()
		s.Send(clients.RespChannelJoinSuccess, c.name)
		return true
	}
	c.members[s.Token()] = s
	c.mu.Unlock()

	s.channels.Store(c.name, c)
	s.Send(clients.RespChannelJoinSuccess, c.name)
	c.refreshPanel()
	return true
}

// Remove leaves a session from the channel. Idempotent.
func (c *Channel) Remove(s *Session) {
	c.mu.Lock()
	_, ok := c.members[s.Token()]
	if ok {
		delete(c.members, s.Token())
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	s.channels.Delete(c.name)
	c.refreshPanel()
}

// refreshPanel pushes the updated member count to every member so the
// client side channel listing stays accurate.
func (c *Channel) refreshPanel() {
	ch := c.wire()
	for _, m := range c.Members() {
		m.Send(clients.RespChannelAvailable, ch)
	}
}

// prepareBody applies the chat body transformations: truncation and
// the CTCP action form for "/me".
func prepareBody(text string) string {
	if strings.HasPrefix(text, "/me ") {
		text = "\x01ACTION " + text[len("/me "):] + "\x01"
	}
	if len(text) > constants.MaxMessageLength {
		text = text[:constants.MaxMessageLength] + truncationMarker
	}
	return text
}

// SendMessage distributes a chat message from sender to every other
// member. Command messages go to the interpreter inline and are never
// persisted; everything else is archived on the worker pool.
func (c *Channel) SendMessage(sender *Session, text string) {
	if !c.CanWrite(sender.Permissions()) {
		return
	}

	c.mu.RLock()
	moderated := c.moderated
	c.mu.RUnlock()
	if moderated && !sender.Permissions().Has(constants.PermBAT) {
		return
	}

	if strings.HasPrefix(text, "!") {
		c.server.commands.Handle(sender, c.name, text)
		return
	}

	text = prepareBody(text)
	msg := protocol.Message{
		Sender:   sender.Name(),
		Content:  text,
		Target:   c.name,
		SenderID: sender.ID(),
	}

	for _, m := range c.Members() {
		if m.Token() == sender.Token() {
			continue
		}
		m.Send(clients.RespSendMessage, msg)
	}

	c.server.persistMessage(sender.Name(), c.name, text)
}

// SendBotMessage distributes a message authored by the service bot.
func (c *Channel) SendBotMessage(text string) {
	msg := c.server.bot.Message(prepareBody(text), c.name)
	for _, m := range c.Members() {
		m.Send(clients.RespSendMessage, msg)
	}
}
