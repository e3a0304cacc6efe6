package theme

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
	"github.com/example/portfolio/internal/storage"
)

// InitialMode reads the persisted mode. Missing, unreadable or invalid values
// resolve to system.
func InitialMode(ctx context.Context, local storage.Local) models.ThemeMode {
	raw, ok, err := local.Get(ctx, storage.ThemeKey)
	if err != nil || !ok {
		return models.ThemeSystem
	}
	mode, err := models.ParseThemeMode(raw)
	if err != nil {
		return models.ThemeSystem
	}
	return mode
}

// IsDark reports whether mode renders dark given the platform preference.
func IsDark(mode models.ThemeMode, prefersDark bool) bool {
	return mode == models.ThemeDark || (mode == models.ThemeSystem && prefersDark)
}

// Manager applies the store's theme mode to a Document.
type Manager struct {
	store  *state.Store
	doc    Document
	prefs  PreferenceSource
	local  storage.Local
	logger *zap.Logger

	mu          sync.Mutex
	mode        models.ThemeMode
	applied     bool
	detachPrefs func()
	unsubscribe func()
}

// NewManager creates a Manager. Call Start to begin tracking the store.
func NewManager(store *state.Store, doc Document, prefs PreferenceSource, local storage.Local, logger *zap.Logger) *Manager {
	return &Manager{store: store, doc: doc, prefs: prefs, local: local, logger: logger}
}

// Start applies the current mode and re-applies on every mode change.
func (m *Manager) Start() {
	m.apply(m.store.Snapshot().Theme.Mode)
	unsubscribe := m.store.Subscribe(func(st state.State) {
		m.apply(st.Theme.Mode)
	})
	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()
}

// Stop detaches from the store and the preference source.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsubscribe, detach := m.unsubscribe, m.detachPrefs
	m.unsubscribe, m.detachPrefs = nil, nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if detach != nil {
		detach()
	}
}

func (m *Manager) apply(mode models.ThemeMode) {
	m.mu.Lock()
	if m.applied && m.mode == mode {
		m.mu.Unlock()
		return
	}
	m.mode = mode
	m.applied = true

	var detach func()
	if mode == models.ThemeSystem {
		if m.detachPrefs == nil {
			m.detachPrefs = m.prefs.Listen(m.onPreferenceChange)
		}
	} else if m.detachPrefs != nil {
		detach = m.detachPrefs
		m.detachPrefs = nil
	}
	m.setClass(IsDark(mode, m.prefs.PrefersDark()))
	m.mu.Unlock()

	if detach != nil {
		detach()
	}

	if err := m.local.Set(context.Background(), storage.ThemeKey, string(mode)); err != nil {
		m.logger.Warn("Failed to persist theme", zap.String("mode", string(mode)), zap.Error(err))
	}
}

func (m *Manager) onPreferenceChange(prefersDark bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != models.ThemeSystem {
		return
	}
	m.setClass(prefersDark)
}

// setClass must be called with m.mu held.
func (m *Manager) setClass(dark bool) {
	if dark {
		m.doc.RemoveClass(ClassLight)
		m.doc.AddClass(ClassDark)
		return
	}
	m.doc.RemoveClass(ClassDark)
	m.doc.AddClass(ClassLight)
}
