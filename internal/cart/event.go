package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Event is a catalog record as the cart sees it. Only ID, Featured and Price drive
// cart rules; every other field is display data carried through untouched.
type Event struct {
	ID       string
	Title    string
	Tagline  string
	Category string
	Featured bool
	Price    Price
	// Extra holds the remaining catalog fields (image, venue, date, time...) verbatim.
	Extra map[string]json.RawMessage
}

var reservedEventKeys = map[string]struct{}{
	"id": {}, "title": {}, "tagline": {}, "category": {}, "featured": {}, "price": {}, "addedAt": {},
}

func (e Event) MarshalJSON() ([]byte, error) {
	fields, err := e.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return e.fromFields(raw)
}

func (e Event) fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(e.Extra)+6)
	for k, v := range e.Extra {
		if _, reserved := reservedEventKeys[k]; reserved {
			continue
		}
		out[k] = v
	}
	put := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = encoded
		return nil
	}
	if err := put("id", e.ID); err != nil {
		return nil, err
	}
	for key, value := range map[string]string{"title": e.Title, "tagline": e.Tagline, "category": e.Category} {
		if value == "" {
			continue
		}
		if err := put(key, value); err != nil {
			return nil, err
		}
	}
	if e.Featured {
		out["featured"] = json.RawMessage("true")
	}
	if !e.Price.IsZero() {
		encoded, err := e.Price.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out["price"] = encoded
	}
	return out, nil
}

func (e *Event) fromFields(raw map[string]json.RawMessage) error {
	*e = Event{}
	if v, ok := raw["id"]; ok {
		id, err := decodeID(v)
		if err != nil {
			return err
		}
		e.ID = id
	}
	for key, dest := range map[string]*string{"title": &e.Title, "tagline": &e.Tagline, "category": &e.Category} {
		v, ok := raw[key]
		if !ok || isNull(v) {
			continue
		}
		if err := json.Unmarshal(v, dest); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	if v, ok := raw["featured"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &e.Featured); err != nil {
			return fmt.Errorf("decode featured: %w", err)
		}
	}
	if v, ok := raw["price"]; ok {
		if err := e.Price.UnmarshalJSON(v); err != nil {
			return err
		}
	}
	for k, v := range raw {
		if _, reserved := reservedEventKeys[k]; reserved {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]json.RawMessage)
		}
		e.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

// decodeID accepts string or numeric ids; catalogs are not consistent about it.
func decodeID(v json.RawMessage) (string, error) {
	if isNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	return n.String(), nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

type priceKind uint8

const (
	priceAbsent priceKind = iota
	priceText
	priceNumber
)

// Price is a display price: absent, a string such as "₹500", or a bare number.
// It serialises back in the form it was read.
type Price struct {
	kind priceKind
	raw  string
}

// TextPrice builds a string-valued price.
func TextPrice(s string) Price { return Price{kind: priceText, raw: s} }

// NumberPrice builds a number-valued price.
func NumberPrice(n int64) Price { return Price{kind: priceNumber, raw: strconv.FormatInt(n, 10)} }

func (p Price) IsZero() bool { return p.kind == priceAbsent }

// String returns the display form; empty when absent.
func (p Price) String() string { return p.raw }

// Amount is the integer value used for cart totals. Text prices keep only their
// digits ("₹1,500" is 1500, "Free" is 0); numbers are truncated toward zero and
// negatives count as zero. Values above maxAmount are clamped to it.
func (p Price) Amount() int {
	switch p.kind {
	case priceText:
		var digits strings.Builder
		for _, r := range p.raw {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if digits.Len() == 0 {
			return 0
		}
		d, err := decimal.NewFromString(digits.String())
		if err != nil {
			return 0
		}
		return clampAmount(d)
	case priceNumber:
		d, err := decimal.NewFromString(p.raw)
		if err != nil {
			return 0
		}
		return clampAmount(d)
	}
	return 0
}

// maxAmount bounds a single price so a full cart's total still fits in an int.
const maxAmount = math.MaxInt / MaxTotalEvents

func clampAmount(d decimal.Decimal) int {
	if d.IsNegative() {
		return 0
	}
	d = d.Truncate(0)
	if d.GreaterThan(decimal.NewFromInt(int64(maxAmount))) {
		return maxAmount
	}
	return int(d.IntPart())
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case priceText:
		return json.Marshal(p.raw)
	case priceNumber:
		return []byte(p.raw), nil
	}
	return []byte("null"), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if isNull(trimmed) {
		*p = Price{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		*p = TextPrice(s)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("decode price: %w", err)
	}
	*p = Price{kind: priceNumber, raw: n.String()}
	return nil
}
