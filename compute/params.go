package compute

import (
	"fmt"

	"github.com/lsst/ctrl-execute/util/tplwriter"
)

// Params is an immutable, two tier mapping of template tokens to values.
// Overrides come from the command line and win over defaults, which come
// from configuration files. A key that is absent from both tiers is unset.
//
// Use a ParamsBuilder to make a new Params.
type Params struct {
	defaults  tier
	overrides tier
}

type tier struct {
	keys   []string
	values map[string]string
}

func (t tier) get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

func (t *tier) set(key, val string) {
	if t.values == nil {
		t.values = map[string]string{}
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = val
}

func (t tier) clone() tier {
	c := tier{
		keys:   make([]string, len(t.keys)),
		values: make(map[string]string, len(t.values)),
	}
	copy(c.keys, t.keys)
	for k, v := range t.values {
		c.values[k] = v
	}
	return c
}

// Get returns the value of key, taking the override when one exists.
func (p Params) Get(key string) (string, bool) {
	if v, ok := p.overrides.get(key); ok {
		return v, true
	}
	return p.defaults.get(key)
}

// Lookup returns the value of key, or "" when it is unset.
func (p Params) Lookup(key string) string {
	v, _ := p.Get(key)
	return v
}

// Default returns the value of key in the default tier only.
func (p Params) Default(key string) (string, bool) {
	return p.defaults.get(key)
}

// Override returns the value of key in the override tier only.
func (p Params) Override(key string) (string, bool) {
	return p.overrides.get(key)
}

// Keys returns every set key: defaults in insertion order, followed by keys
// that only have an override.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.defaults.keys)+len(p.overrides.keys))
	keys = append(keys, p.defaults.keys...)
	for _, k := range p.overrides.keys {
		if _, ok := p.defaults.values[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Substitutions returns the merged mapping as an ordered list of template
// substitutions, in the order given by Keys.
func (p Params) Substitutions() []tplwriter.Substitution {
	keys := p.Keys()
	subs := make([]tplwriter.Substitution, 0, len(keys))
	for _, k := range keys {
		subs = append(subs, tplwriter.Substitution{Key: k, Value: p.Lookup(k)})
	}
	return subs
}

// Builder returns a ParamsBuilder starting from a copy of p.
func (p Params) Builder() *ParamsBuilder {
	return &ParamsBuilder{p: Params{
		defaults:  p.defaults.clone(),
		overrides: p.overrides.clone(),
	}}
}

// ParamsBuilder accumulates values for a new Params.
type ParamsBuilder struct {
	p Params
}

// NewParamsBuilder returns an empty ParamsBuilder.
func NewParamsBuilder() *ParamsBuilder {
	return &ParamsBuilder{}
}

// Default sets a default value. Values are stored in their fmt.Sprint form.
// Setting an existing key keeps its original position.
func (b *ParamsBuilder) Default(key string, val interface{}) *ParamsBuilder {
	b.p.defaults.set(key, fmt.Sprint(val))
	return b
}

// Override sets an override value. Only call this for values the user
// actually supplied.
func (b *ParamsBuilder) Override(key string, val interface{}) *ParamsBuilder {
	b.p.overrides.set(key, fmt.Sprint(val))
	return b
}

// Build returns the accumulated Params. The builder can keep being used
// without affecting the returned value.
func (b *ParamsBuilder) Build() Params {
	return Params{
		defaults:  b.p.defaults.clone(),
		overrides: b.p.overrides.clone(),
	}
}
