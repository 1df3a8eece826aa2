package session

import "sync"

// User is the authenticated identity attached to a connection.
type User struct {
	ID       int64
	Username string
	Email    string
	AvatarID int64
}

// Conn is the per-connection context threaded through every call made on
// that connection: the channel plus the currently authenticated user, if
// any. It replaces implicit per-session service state.
type Conn struct {
	id string
	ch Channel

	mu   sync.RWMutex
	user *User
}

func NewConn(id string, ch Channel) *Conn {
	return &Conn{id: id, ch: ch}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Channel() Channel {
	return c.ch
}

func (c *Conn) SetUser(u *User) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
}

func (c *Conn) ClearUser() {
	c.SetUser(nil)
}

// User returns a copy of the authenticated user and whether one is set.
func (c *Conn) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}
