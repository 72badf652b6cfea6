package library

import (
	"time"
)

type Script struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	ProjectID string          `json:"project_id" db:"project_id"`
	FolderID  string          `json:"folder_id" db:"folder_id"` // Must resolve in the project's forest (app-enforced)
	Title     string          `json:"title" db:"title"`
	Content   string          `json:"content" db:"content"` // Live content, equals the newest version
	Metadata  ScriptMetadata  `json:"metadata" db:"metadata"`
	Versions  []ScriptVersion `json:"versions,omitempty" db:"versions"`
	WordCount int             `json:"word_count" db:"word_count"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`

	// EstimatedDuration is computed on read for spoken content without an explicit duration
	EstimatedDuration *int `json:"estimated_duration,omitempty" db:"-"`
}

// ScriptMetadata describes a script. Duration is in minutes.
type ScriptMetadata struct {
	ContentType ContentType  `json:"content_type"`
	Tags        []string     `json:"tags"`
	Status      ScriptStatus `json:"status"`
	Duration    *int         `json:"duration,omitempty"`
}

// ScriptVersion is one immutable entry of a script's version ledger
type ScriptVersion struct {
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ScriptFilter narrows a script listing within a project
type ScriptFilter struct {
	FolderID *string
	Status   *ScriptStatus
	Query    string // Delegated to the storage engine's text search, no ranking
}
