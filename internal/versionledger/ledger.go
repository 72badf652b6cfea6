// Package versionledger manages a single script's append-only content history.
//
// Version numbers form a contiguous sequence starting at 1. Nothing in this
// package rewrites or removes an existing entry: reverting appends a copy of
// an older entry as a new version.
package versionledger

import (
	"slices"
	"time"

	"scriptdesk/internal/domain"
	"scriptdesk/internal/domain/models/library"
)

// Initialize creates the first ledger entry
func Initialize(content string, at time.Time) []library.ScriptVersion {
	return []library.ScriptVersion{{
		Version:   1,
		Content:   content,
		CreatedAt: at,
	}}
}

// Append returns a new ledger with content added as version Latest+1.
// The input slice is left untouched.
func Append(versions []library.ScriptVersion, content string, at time.Time) []library.ScriptVersion {
	out := slices.Clone(versions)
	return append(out, library.ScriptVersion{
		Version:   Latest(versions) + 1,
		Content:   content,
		CreatedAt: at,
	})
}

// Revert appends a copy of the target version's content as a new version and
// returns the new ledger together with the restored content. An unknown target
// is a ValidationError and the ledger is returned unchanged.
func Revert(versions []library.ScriptVersion, target int, at time.Time) ([]library.ScriptVersion, string, error) {
	entry, ok := Find(versions, target)
	if !ok {
		return versions, "", domain.NewValidationError("version %d does not exist", target)
	}
	return Append(versions, entry.Content, at), entry.Content, nil
}

// Latest returns the highest version number, 0 for an empty ledger
func Latest(versions []library.ScriptVersion) int {
	latest := 0
	for _, v := range versions {
		latest = max(latest, v.Version)
	}
	return latest
}

// Find returns the entry with the given version number
func Find(versions []library.ScriptVersion, version int) (library.ScriptVersion, bool) {
	for _, v := range versions {
		if v.Version == version {
			return v, true
		}
	}
	return library.ScriptVersion{}, false
}

// Validate checks that versions are numbered 1..n in order with
// non-decreasing creation times.
func Validate(versions []library.ScriptVersion) error {
	if len(versions) == 0 {
		return domain.NewValidationError("version ledger is empty")
	}
	for i, v := range versions {
		if v.Version != i+1 {
			return domain.NewValidationError("version ledger has a gap at position %d (found version %d)", i, v.Version)
		}
		if i > 0 && v.CreatedAt.Before(versions[i-1].CreatedAt) {
			return domain.NewValidationError("version %d predates version %d", v.Version, versions[i-1].Version)
		}
	}
	return nil
}
