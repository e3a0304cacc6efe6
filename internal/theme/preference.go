package theme

import (
	"strings"
	"sync"
)

// PreferenceSource reports the platform colour scheme preference and notifies
// listeners when it changes.
type PreferenceSource interface {
	PrefersDark() bool
	Listen(fn func(prefersDark bool)) (detach func())
}

// StaticPreference is a PreferenceSource whose value is set by the caller,
// e.g. from a request's Sec-CH-Prefers-Color-Scheme hint.
type StaticPreference struct {
	mu        sync.Mutex
	dark      bool
	listeners map[int]func(bool)
	nextID    int
}

// NewStaticPreference creates a StaticPreference starting at dark.
func NewStaticPreference(dark bool) *StaticPreference {
	return &StaticPreference{dark: dark, listeners: make(map[int]func(bool))}
}

// ParseColorSchemeHint reads a Sec-CH-Prefers-Color-Scheme value. ok is false
// when the hint is absent or unrecognized.
func ParseColorSchemeHint(v string) (dark, ok bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(v), `"`)) {
	case "dark":
		return true, true
	case "light":
		return false, true
	}
	return false, false
}

func (p *StaticPreference) PrefersDark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dark
}

// Set changes the preference and notifies listeners if it differs.
func (p *StaticPreference) Set(dark bool) {
	p.mu.Lock()
	if p.dark == dark {
		p.mu.Unlock()
		return
	}
	p.dark = dark
	fns := make([]func(bool), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

func (p *StaticPreference) Listen(fn func(bool)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// Listeners returns the number of attached listeners.
func (p *StaticPreference) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}
