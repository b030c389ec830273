package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// CurrencyMap maps a currency symbol to an integer amount. Stored as a JSON
// column; also used in memory for costs and balances.
type CurrencyMap map[string]int

func (m CurrencyMap) Value() (driver.Value, error) {
	if m == nil {
		m = CurrencyMap{}
	}
	return json.Marshal(m)
}

func (m *CurrencyMap) Scan(value interface{}) error {
	if value == nil {
		*m = CurrencyMap{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("unsupported type for CurrencyMap")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, m)
}

// Clone returns an independent copy so callers can mutate without aliasing.
func (m CurrencyMap) Clone() CurrencyMap {
	out := make(CurrencyMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StringList is a JSON-stored ordered list of entity references.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("unsupported type for StringList")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// ChoiceEntry is one append-only history record of a resolved choice.
// NodeID is the node the choice was taken from.
type ChoiceEntry struct {
	ChoiceID   string    `json:"choice_id,omitempty"`
	ChoiceText string    `json:"choice_text"`
	NodeID     string    `json:"node_id"`
	Custom     bool      `json:"custom,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type ChoiceHistory []ChoiceEntry

func (h ChoiceHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ChoiceHistory{}
	}
	return json.Marshal(h)
}

func (h *ChoiceHistory) Scan(value interface{}) error {
	if value == nil {
		*h = ChoiceHistory{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("unsupported type for ChoiceHistory")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, h)
}
