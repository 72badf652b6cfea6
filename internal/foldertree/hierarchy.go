package foldertree

import (
	"scriptdesk/internal/domain"
	"scriptdesk/internal/domain/models/library"
)

// FindByID searches the nested form depth-first across all levels
func FindByID(forest []library.FolderNode, id string) (library.FolderNode, bool) {
	for _, n := range forest {
		if n.ID == id {
			return n, true
		}
		if found, ok := FindByID(n.Children, id); ok {
			return found, true
		}
	}
	return library.FolderNode{}, false
}

// ValidateHierarchy reports whether every id in the forest is unique at every
// depth and every node's ParentID equals the id of the node that contains it
// (roots must have none).
func ValidateHierarchy(forest []library.FolderNode) bool {
	return checkHierarchy(forest) == nil
}

// Validate is the strict check applied to externally supplied folder lists and
// to stored forests on load: the hierarchy rules plus non-empty ids and names
// and non-negative script counts. Failures are ValidationErrors.
func Validate(forest []library.FolderNode) error {
	if err := checkHierarchy(forest); err != nil {
		return err
	}

	var check func(nodes []library.FolderNode) error
	check = func(nodes []library.FolderNode) error {
		for _, n := range nodes {
			if n.ID == "" {
				return domain.NewValidationError("folder id cannot be empty")
			}
			if _, err := NormalizeName(n.Name); err != nil {
				return domain.NewValidationError("folder %s: %s", n.ID, err.Error())
			}
			if n.ScriptCount < 0 {
				return domain.NewValidationError("folder %s has a negative script count", n.ID)
			}
			if err := check(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return check(forest)
}

func checkHierarchy(forest []library.FolderNode) error {
	seen := make(map[string]struct{})

	var walk func(nodes []library.FolderNode, parentID *string) error
	walk = func(nodes []library.FolderNode, parentID *string) error {
		for i := range nodes {
			n := &nodes[i]
			if _, dup := seen[n.ID]; dup {
				return domain.NewValidationError("duplicate folder id %q", n.ID)
			}
			seen[n.ID] = struct{}{}

			switch {
			case parentID == nil && n.ParentID != nil:
				return domain.NewValidationError("root folder %q must not have a parent id", n.ID)
			case parentID != nil && (n.ParentID == nil || *n.ParentID != *parentID):
				return domain.NewValidationError("folder %q parent id does not match its container %q", n.ID, *parentID)
			}

			if err := walk(n.Children, &n.ID); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(forest, nil)
}
