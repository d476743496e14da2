package errbus

import (
	"sync"

	"github.com/google/uuid"
)

// Message is the human title and detail shown for a code.
type Message struct {
	Title  string
	Detail string
}

// Catalog maps numeric codes to user-facing text. Hosts replace entries with
// localized strings at startup.
type Catalog struct {
	mu       sync.RWMutex
	messages map[int]Message
}

// DefaultCatalog returns English fallbacks for the lifecycle codes.
func DefaultCatalog() *Catalog {
	return &Catalog{messages: map[int]Message{
		CodeAcceptOffer: {
			Title:  "Unable to accept credential offer",
			Detail: "There was a problem while accepting the credential offer.",
		},
		CodeDeclineOffer: {
			Title:  "Unable to decline credential offer",
			Detail: "There was a problem while declining the credential offer.",
		},
	}}
}

// Set replaces the message for code.
func (c *Catalog) Set(code int, msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[code] = msg
}

// Lookup returns the message for code and whether it exists.
func (c *Catalog) Lookup(code int) (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msg, ok := c.messages[code]
	return msg, ok
}

// NewEvent builds an event for code with the catalog text and cause attached.
func (c *Catalog) NewEvent(kind Kind, code int, cause error) Event {
	msg, _ := c.Lookup(code)
	event := Event{
		ID:     uuid.New(),
		Kind:   kind,
		Title:  msg.Title,
		Detail: msg.Detail,
		Code:   code,
	}
	if cause != nil {
		event.DiagnosticCause = cause.Error()
	}
	return event
}
