package services

import (
	"fmt"
	"net/url"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params is an insertion-ordered set of request parameters.
//
// Setting an existing key replaces its value in place, so keys are never duplicated and keep their first position.
type Params struct {
	om *orderedmap.OrderedMap[string, string]
}

// NewParams builds [Params] from alternating key/value pairs. A trailing key without a value is set to "".
func NewParams(kv ...string) *Params {
	p := &Params{om: orderedmap.New[string, string]()}
	for i := 0; i < len(kv); i += 2 {
		value := ""
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		p.Set(kv[i], value)
	}
	return p
}

// Set inserts or replaces key.
func (p *Params) Set(key, value string) *Params {
	p.om.Set(key, value)
	return p
}

func (p *Params) Get(key string) (string, bool) {
	return p.om.Get(key)
}

func (p *Params) Has(key string) bool {
	_, ok := p.om.Get(key)
	return ok
}

func (p *Params) Delete(key string) {
	p.om.Delete(key)
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return p.om.Len()
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.Len())
	if p == nil {
		return keys
	}
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Merge copies every pair of other into p, overwriting values of keys p already holds.
func (p *Params) Merge(other *Params) *Params {
	if other == nil {
		return p
	}
	for pair := other.om.Oldest(); pair != nil; pair = pair.Next() {
		p.om.Set(pair.Key, pair.Value)
	}
	return p
}

// Except removes keys from p.
func (p *Params) Except(keys ...string) *Params {
	for _, key := range keys {
		p.om.Delete(key)
	}
	return p
}

func (p *Params) Clone() *Params {
	return NewParams().Merge(p)
}

// Encode writes p as a query string ("k=v&k2=v2") in insertion order.
func (p *Params) Encode() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}
	return b.String()
}

// String implements [fmt.Stringer] with client_secret and password masked.
func (p *Params) String() string {
	masked := p.Clone()
	for _, key := range []string{"client_secret", "password"} {
		if masked.Has(key) {
			masked.Set(key, "***")
		}
	}
	return masked.Encode()
}

// ParseParams parses a query string, with or without a leading "?", keeping key order.
//
// A repeated key keeps its first position and its last value.
func ParseParams(query string) (*Params, error) {
	p := NewParams()
	query = strings.TrimPrefix(query, "?")
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter value for %q: %w", key, err)
		}
		p.Set(key, value)
	}
	return p, nil
}
