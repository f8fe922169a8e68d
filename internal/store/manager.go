package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/takeshy/davquery/internal/query"
)

const defaultDataFile = ".davquery.json"

// ErrNotFound is returned when no query has the requested name
var ErrNotFound = errors.New("saved query not found")

// Manager handles saved query operations
type Manager struct {
	dataPath string
	data     *StoreData
	mu       sync.RWMutex
	now      func() time.Time
}

// NewManager creates a new store manager
func NewManager(dataPath string) (*Manager, error) {
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataPath = filepath.Join(home, defaultDataFile)
	}

	m := &Manager{
		dataPath: dataPath,
		data: &StoreData{
			Queries: make(map[string]*SavedQuery),
		},
		now: time.Now,
	}

	if err := m.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load saved queries: %w", err)
	}

	return m, nil
}

// Path returns the data file location
func (m *Manager) Path() string {
	return m.dataPath
}

// load loads saved queries from file
func (m *Manager) load() error {
	data, err := os.ReadFile(m.dataPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, m.data); err != nil {
		return err
	}
	if m.data.Queries == nil {
		m.data.Queries = make(map[string]*SavedQuery)
	}
	return nil
}

// Save saves the queries to file
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved queries: %w", err)
	}

	if dir := filepath.Dir(m.dataPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return os.WriteFile(m.dataPath, data, 0644)
}

// SaveQuery creates or replaces the query called name. The text must parse
// to a block with a command.
func (m *Manager) SaveQuery(name, text string) (*SavedQuery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("query name is required")
	}

	q := query.Parse(text)
	if q.Command == "" {
		return nil, fmt.Errorf("query %q has no command", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	saved, ok := m.data.Queries[name]
	if !ok {
		saved = &SavedQuery{Name: name, CreatedAt: now}
		m.data.Queries[name] = saved
	}
	saved.Text = text
	saved.Folder = q.Folder
	saved.UpdatedAt = now

	copied := *saved
	return &copied, nil
}

// GetQuery gets a saved query by name
func (m *Manager) GetQuery(name string) (*SavedQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	saved, ok := m.data.Queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	copied := *saved
	return &copied, nil
}

// MarkRun records that name was just executed
func (m *Manager) MarkRun(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if saved, ok := m.data.Queries[name]; ok {
		saved.LastRunAt = m.now()
	}
}

// RemoveQuery removes a saved query
func (m *Manager) RemoveQuery(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data.Queries[name]; !ok {
		return false
	}
	delete(m.data.Queries, name)
	return true
}

// ListQueries returns all saved queries sorted by name
func (m *Manager) ListQueries() []SavedQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()

	queries := make([]SavedQuery, 0, len(m.data.Queries))
	for _, saved := range m.data.Queries {
		queries = append(queries, *saved)
	}
	sort.Slice(queries, func(i, j int) bool {
		return queries[i].Name < queries[j].Name
	})
	return queries
}
