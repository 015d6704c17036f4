package cart

import (
	"encoding/json"
	"fmt"
	"time"
)

// MaxTotalEvents is the number of slots in a cart.
const MaxTotalEvents = 3

// addedAtLayout matches the browser's Date.toISOString output.
const addedAtLayout = "2006-01-02T15:04:05.000Z"

// Item is an Event snapshot taken when it was added to the cart.
type Item struct {
	Event
	// AddedAt is kept as the original ISO-8601 text so restores are verbatim.
	AddedAt string
}

func newItem(event Event, now time.Time) Item {
	return Item{Event: event.clone(), AddedAt: now.UTC().Format(addedAtLayout)}
}

// AddedTime parses AddedAt; the zero time is returned for unparseable values.
func (i Item) AddedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, i.AddedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (i Item) MarshalJSON() ([]byte, error) {
	fields, err := i.Event.fields()
	if err != nil {
		return nil, err
	}
	if i.AddedAt != "" {
		encoded, err := json.Marshal(i.AddedAt)
		if err != nil {
			return nil, err
		}
		fields["addedAt"] = encoded
	}
	return json.Marshal(fields)
}

func (i *Item) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Item{}
	if err := i.Event.fromFields(raw); err != nil {
		return err
	}
	if v, ok := raw["addedAt"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &i.AddedAt); err != nil {
			return fmt.Errorf("decode addedAt: %w", err)
		}
	}
	return nil
}

func (e Event) clone() Event {
	out := e
	if e.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(e.Extra))
		for k, v := range e.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = Item{Event: item.Event.clone(), AddedAt: item.AddedAt}
	}
	return out
}

// encodeItems writes the persisted format: a JSON array, never null.
func encodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

func decodeItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
