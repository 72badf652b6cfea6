// Package folderstats audits a folder forest against live script counts.
//
// The analyzer never reads the cached ScriptCount to decide what is empty; the
// caller supplies counts aggregated from the script collection, and the cached
// value is reported alongside so drift can be spotted.
package folderstats

import (
	"sort"
	"strings"

	"scriptdesk/internal/domain/models/library"
)

// FolderScripts is the per-folder line of a report
type FolderScripts struct {
	FolderID    string `json:"folder_id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Depth       int    `json:"depth"`
	LiveCount   int    `json:"live_count"`
	CachedCount int    `json:"cached_count"`
}

// Drifted reports whether the cached counter disagrees with the live count
func (f FolderScripts) Drifted() bool {
	return f.LiveCount != f.CachedCount
}

// EmptyFolder is a folder without any live script
type EmptyFolder struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// Report is the result of Analyze
type Report struct {
	TotalFolders      int             `json:"total_folders"`
	FolderDepth       int             `json:"folder_depth"`
	ScriptsPerFolder  []FolderScripts `json:"scripts_per_folder"`
	EmptyFolders      []EmptyFolder   `json:"empty_folders"`
	LiveScriptTotal   int             `json:"live_script_total"`
	CachedScriptTotal int             `json:"cached_script_total"`
	// OrphanedFolderIDs are folder ids that still have live scripts but no
	// longer exist in the forest, e.g. after an interrupted folder delete.
	OrphanedFolderIDs []string `json:"orphaned_folder_ids"`
	OrphanedScripts   int      `json:"orphaned_scripts"`
}

// Analyze walks the forest recursively. Depth is the maximum nesting level
// below the roots (roots are level 0, an empty forest reports 0).
func Analyze(forest []library.FolderNode, liveCounts map[string]int) *Report {
	report := &Report{
		ScriptsPerFolder:  []FolderScripts{},
		EmptyFolders:      []EmptyFolder{},
		OrphanedFolderIDs: []string{},
	}
	seen := make(map[string]struct{})

	var walk func(nodes []library.FolderNode, depth int, parentPath []string)
	walk = func(nodes []library.FolderNode, depth int, parentPath []string) {
		for _, n := range nodes {
			seen[n.ID] = struct{}{}
			path := append(parentPath[:len(parentPath):len(parentPath)], n.Name)
			joined := strings.Join(path, "/")

			live := liveCounts[n.ID]
			report.TotalFolders++
			report.FolderDepth = max(report.FolderDepth, depth)
			report.LiveScriptTotal += live
			report.CachedScriptTotal += n.ScriptCount
			report.ScriptsPerFolder = append(report.ScriptsPerFolder, FolderScripts{
				FolderID:    n.ID,
				Name:        n.Name,
				Path:        joined,
				Depth:       depth,
				LiveCount:   live,
				CachedCount: n.ScriptCount,
			})
			if live == 0 {
				report.EmptyFolders = append(report.EmptyFolders, EmptyFolder{
					FolderID: n.ID,
					Name:     n.Name,
					Path:     joined,
				})
			}

			walk(n.Children, depth+1, path)
		}
	}
	walk(forest, 0, nil)

	for id, count := range liveCounts {
		if _, ok := seen[id]; !ok && count > 0 {
			report.OrphanedFolderIDs = append(report.OrphanedFolderIDs, id)
			report.OrphanedScripts += count
		}
	}
	sort.Strings(report.OrphanedFolderIDs)

	return report
}

// Drift returns the folders whose cached counter disagrees with the live count
func (r *Report) Drift() []FolderScripts {
	var drifted []FolderScripts
	for _, f := range r.ScriptsPerFolder {
		if f.Drifted() {
			drifted = append(drifted, f)
		}
	}
	return drifted
}

// Consistent reports whether every cached counter matches and no scripts are orphaned
func (r *Report) Consistent() bool {
	return len(r.Drift()) == 0 && len(r.OrphanedFolderIDs) == 0
}
