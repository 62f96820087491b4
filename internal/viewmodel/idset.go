package viewmodel

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/abelbrown/hntop/internal/store"
)

// Store keys for the persisted sets.
const (
	DismissedKey = "hntop.dismissed"
	OpenedKey    = "hntop.opened"
)

// IDSet is a set of story keys. Persisted as a JSON object mapping each key
// to true.
type IDSet map[string]bool

// Has reports whether key is in the set.
func (s IDSet) Has(key string) bool {
	return s[key]
}

// Sorted returns the keys in lexical order.
func (s IDSet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decodeIDSet parses a persisted set. Entries whose value is not true are
// dropped; anything that is not a JSON object of booleans is an error.
func decodeIDSet(data []byte) (IDSet, error) {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	set := make(IDSet, len(raw))
	for k, v := range raw {
		if v {
			set[k] = true
		}
	}
	return set, nil
}

// loadIDSet reads key from prefs. A missing key yields an empty set and no
// error; unreadable or malformed data yields an empty set and the error.
func loadIDSet(prefs Prefs, key string) (IDSet, error) {
	data, err := prefs.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return IDSet{}, nil
	}
	if err != nil {
		return IDSet{}, err
	}
	set, err := decodeIDSet(data)
	if err != nil {
		return IDSet{}, err
	}
	return set, nil
}

// saveIDSet writes set under key.
func saveIDSet(prefs Prefs, key string, set IDSet) error {
	data, err := json.Marshal(map[string]bool(set))
	if err != nil {
		return err
	}
	return prefs.Set(key, data)
}
