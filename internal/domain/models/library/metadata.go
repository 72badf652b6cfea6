package library

import (
	"fmt"
)

// ContentType is the closed set of script formats
type ContentType string

const (
	ContentTypeScreenplay   ContentType = "screenplay"
	ContentTypeStagePlay    ContentType = "stage_play"
	ContentTypeVideo        ContentType = "video"
	ContentTypePodcast      ContentType = "podcast"
	ContentTypePresentation ContentType = "presentation"
	ContentTypeOther        ContentType = "other"
)

// ParseContentType converts a raw string into a ContentType
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(s)
	if !ct.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return ct, nil
}

// Valid reports whether ct is one of the known content types
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeScreenplay, ContentTypeStagePlay, ContentTypeVideo,
		ContentTypePodcast, ContentTypePresentation, ContentTypeOther:
		return true
	default:
		return false
	}
}

// IsSpoken reports whether the content is performed aloud, which makes a
// reading-time duration estimate meaningful.
func (ct ContentType) IsSpoken() bool {
	switch ct {
	case ContentTypeScreenplay, ContentTypeStagePlay, ContentTypeVideo,
		ContentTypePodcast, ContentTypePresentation:
		return true
	case ContentTypeOther:
		return false
	default:
		return false
	}
}

// ScriptStatus is the closed set of workflow states
type ScriptStatus string

const (
	StatusDraft     ScriptStatus = "draft"
	StatusInReview  ScriptStatus = "in_review"
	StatusApproved  ScriptStatus = "approved"
	StatusPublished ScriptStatus = "published"
	StatusArchived  ScriptStatus = "archived"
)

// ParseScriptStatus converts a raw string into a ScriptStatus
func ParseScriptStatus(s string) (ScriptStatus, error) {
	st := ScriptStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown script status %q", s)
	}
	return st, nil
}

// Valid reports whether st is one of the known statuses
func (st ScriptStatus) Valid() bool {
	switch st {
	case StatusDraft, StatusInReview, StatusApproved, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}
