package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/askouija/game/dictionary"
	"github.com/wricardo/askouija/game/service"
)

// FileExt is the extension of discoverable dictionary files
const FileExt = ".txt"

var (
	ErrDictionaryNotFound = service.ErrDictionaryNotFound
	ErrEmptyDictionary    = service.ErrEmptyDictionary
)

type entry struct {
	dict       *dictionary.Dictionary
	source     string
	registered bool
}

// Manager handles dictionary loading and caching
type Manager struct {
	dir         string
	defaultName string
	dicts       map[string]*entry
	mu          sync.RWMutex
}

var _ service.DictionaryCatalog = (*Manager)(nil)

// NewManager creates a new catalog. An empty dir disables discovery.
func NewManager(dir string) (*Manager, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("dictionary directory does not exist: %s", dir)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("dictionary directory is not a directory: %s", dir)
		}
	}

	return &Manager{
		dir:   dir,
		dicts: make(map[string]*entry),
	}, nil
}

// Register adds an already loaded dictionary under name. The first
// registered dictionary becomes the default.
func (m *Manager) Register(name string, d *dictionary.Dictionary) {
	m.register(name, d, "")
}

// LoadFile loads path and registers it under name
func (m *Manager) LoadFile(name, path string) (*dictionary.Dictionary, error) {
	d, stats, err := dictionary.Load(path)
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDictionary)
	}

	log.Info().
		Str("dictionary", name).
		Str("path", path).
		Int("kept", stats.Kept).
		Int("dropped", stats.Dropped).
		Msg("dictionary loaded")

	m.register(name, d, path)
	return d, nil
}

func (m *Manager) register(name string, d *dictionary.Dictionary, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dicts[name] = &entry{dict: d, source: source, registered: true}
	if m.defaultName == "" {
		m.defaultName = name
	}
}

// SetDefault sets the default dictionary by name
func (m *Manager) SetDefault(name string) error {
	if _, err := m.Get(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = name
	return nil
}

// DefaultName returns the name used when none is given
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// Get returns a dictionary by name, loading <dir>/<name>.txt on first use.
// An empty name means the default. The file is read without holding the
// catalog lock.
func (m *Manager) Get(name string) (*dictionary.Dictionary, error) {
	m.mu.RLock()
	if name == "" {
		name = m.defaultName
	}
	// Check cache first
	if e, exists := m.dicts[name]; exists {
		m.mu.RUnlock()
		return e.dict, nil
	}
	m.mu.RUnlock()

	if name == "" || m.dir == "" || !validName(name) {
		return nil, ErrDictionaryNotFound
	}

	path := filepath.Join(m.dir, name+FileExt)
	d, stats, err := dictionary.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrDictionaryNotFound
		}
		return nil, fmt.Errorf("failed to load dictionary %s: %w", name, err)
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDictionary)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock; a concurrent load may have won
	if e, exists := m.dicts[name]; exists {
		return e.dict, nil
	}

	log.Debug().
		Str("dictionary", name).
		Int("kept", stats.Kept).
		Int("dropped", stats.Dropped).
		Msg("dictionary discovered")

	m.dicts[name] = &entry{dict: d, source: path}
	return d, nil
}

// List returns registered and discovered dictionaries sorted by name.
// Files that fail to load are skipped.
func (m *Manager) List() ([]*service.DictionaryInfo, error) {
	names := make(map[string]struct{})

	m.mu.RLock()
	for name := range m.dicts {
		names[name] = struct{}{}
	}
	m.mu.RUnlock()

	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read dictionary directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), FileExt) {
				continue
			}
			names[strings.TrimSuffix(e.Name(), FileExt)] = struct{}{}
		}
	}

	defaultName := m.DefaultName()
	result := make([]*service.DictionaryInfo, 0, len(names))
	for name := range names {
		d, err := m.Get(name)
		if err != nil {
			log.Debug().Err(err).Str("dictionary", name).Msg("skipping dictionary")
			continue
		}

		var source string
		m.mu.RLock()
		if e, exists := m.dicts[name]; exists {
			source = e.source
		}
		m.mu.RUnlock()

		result = append(result, &service.DictionaryInfo{
			Name:    name,
			Words:   d.Len(),
			Default: name == defaultName,
			Source:  source,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// RefreshCache forgets discovered dictionaries so they are reloaded from disk.
// Registered dictionaries are kept.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, e := range m.dicts {
		if !e.registered {
			delete(m.dicts, name)
		}
	}
}

// validName rejects names that would escape the dictionary directory
func validName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
