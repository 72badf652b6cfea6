package library

import (
	"time"
)

// DefaultFolderName is the root folder every new project starts with
const DefaultFolderName = "Scripts"

type Project struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	Folders     []FolderNode    `json:"folders" db:"folders"` // Embedded forest, stored as JSONB
	Settings    ProjectSettings `json:"settings" db:"settings"`
	Stats       ProjectStats    `json:"stats" db:"stats"`
	Revision    int64           `json:"revision" db:"revision"` // Bumped on every folders/stats write
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProjectSettings holds defaults applied to scripts created in the project
type ProjectSettings struct {
	DefaultContentType ContentType  `json:"default_content_type"`
	DefaultStatus      ScriptStatus `json:"default_status"`
}

// DefaultProjectSettings returns the settings used when a project is created without any
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		DefaultContentType: ContentTypeScreenplay,
		DefaultStatus:      StatusDraft,
	}
}

// ProjectStats is the cached aggregate maintained by incremental deltas.
// TotalScripts is only eventually consistent with the sum of folder script counts.
type ProjectStats struct {
	TotalScripts int       `json:"total_scripts"`
	LastActivity time.Time `json:"last_activity"`
}
