package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/angelmondragon/fest-cart/internal/cart"
)

// Catalog is the read-only festival event feed. Records are kept in feed order.
type Catalog struct {
	events []cart.Event
	byID   map[string]int
}

// Load decodes a JSON array of events and validates the ids.
func Load(r io.Reader) (*Catalog, error) {
	var events []cart.Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(events)
}

// LoadFile reads the catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// New builds a catalog from already decoded events. Every event needs a
// non-empty id and ids must be unique.
func New(events []cart.Event) (*Catalog, error) {
	c := &Catalog{
		events: make([]cart.Event, 0, len(events)),
		byID:   make(map[string]int, len(events)),
	}
	for i, event := range events {
		id := strings.TrimSpace(event.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog event at index %d has no id", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog event id %q is duplicated", id)
		}
		event.ID = id
		c.byID[id] = len(c.events)
		c.events = append(c.events, event)
	}
	return c, nil
}

// Lookup returns the event with id.
func (c *Catalog) Lookup(id string) (cart.Event, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return cart.Event{}, false
	}
	return c.events[idx], true
}

// List returns every event in feed order. The slice is a copy.
func (c *Catalog) List() []cart.Event {
	return append([]cart.Event(nil), c.events...)
}

func (c *Catalog) Len() int { return len(c.events) }
