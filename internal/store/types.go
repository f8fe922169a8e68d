package store

import "time"

// SavedQuery is a named query block
type SavedQuery struct {
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Folder    string    `json:"folder,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastRunAt time.Time `json:"last_run_at"`
}

// StoreData represents the saved query file
type StoreData struct {
	Queries map[string]*SavedQuery `json:"queries"` // key is query name
}
