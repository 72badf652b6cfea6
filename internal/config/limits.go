package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Limited to 255 to provide reasonable UX (titles should be short and descriptive).
	MaxProjectTitleLength = 255

	// MaxProjectDescriptionLength caps the free-form project description.
	MaxProjectDescriptionLength = 4000

	// MaxScriptTitleLength is the maximum length for script titles.
	MaxScriptTitleLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as script titles for consistency.
	MaxFolderNameLength = 255

	// MaxTagCount and MaxTagLength bound script metadata tags.
	MaxTagCount  = 32
	MaxTagLength = 64

	// MaxScriptDuration is the longest accepted duration in minutes (one day).
	MaxScriptDuration = 24 * 60

	// SpokenWordsPerMinute drives the duration estimate for spoken scripts.
	SpokenWordsPerMinute = 150
)
