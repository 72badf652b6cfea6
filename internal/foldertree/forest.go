// Package foldertree maintains a project's embedded folder forest without
// touching storage.
//
// Internally the forest is an arena: nodes are keyed by id and parent/child
// links are id references, so removing a subtree is a set difference over ids.
// The nested form stored on the project document is produced and consumed only
// at the boundary (FromNested / Nested).
package foldertree

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"scriptdesk/internal/config"
	"scriptdesk/internal/domain"
	"scriptdesk/internal/domain/models/library"
)

// IDFunc generates folder ids. Ids must never repeat within a project.
type IDFunc func() string

// Forest is the arena form of a project's folder forest. It is not safe for
// concurrent use; callers load, mutate and persist it within one request.
type Forest struct {
	nodes map[string]*entry
	roots []string
	newID IDFunc
	now   func() time.Time
}

type entry struct {
	node     library.FolderNode // Children is always nil inside the arena
	children []string
}

// Option configures a Forest
type Option func(*Forest)

// WithIDFunc overrides the id generator (uuid v4 by default)
func WithIDFunc(fn IDFunc) Option {
	return func(f *Forest) { f.newID = fn }
}

// WithClock overrides the clock used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(f *Forest) { f.now = now }
}

// New returns an empty forest
func New(opts ...Option) *Forest {
	f := &Forest{
		nodes: make(map[string]*entry),
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FromNested builds the arena from the stored nested form. The input must pass
// Validate; it is not modified.
func FromNested(nested []library.FolderNode, opts ...Option) (*Forest, error) {
	if err := Validate(nested); err != nil {
		return nil, err
	}

	f := New(opts...)
	var load func(nodes []library.FolderNode) []string
	load = func(nodes []library.FolderNode) []string {
		ids := make([]string, 0, len(nodes))
		for _, n := range nodes {
			e := &entry{node: detach(n)}
			f.nodes[n.ID] = e
			e.children = load(n.Children)
			ids = append(ids, n.ID)
		}
		return ids
	}
	f.roots = load(nested)
	return f, nil
}

// Nested serializes the forest back into the embedded form. Nodes without
// descendants have a nil Children slice.
func (f *Forest) Nested() []library.FolderNode {
	var build func(ids []string) []library.FolderNode
	build = func(ids []string) []library.FolderNode {
		if len(ids) == 0 {
			return nil
		}
		out := make([]library.FolderNode, 0, len(ids))
		for _, id := range ids {
			e := f.nodes[id]
			n := detach(e.node)
			n.Children = build(e.children)
			out = append(out, n)
		}
		return out
	}

	nested := build(f.roots)
	if nested == nil {
		nested = []library.FolderNode{}
	}
	return nested
}

// Len returns the number of folders at all levels
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Find returns the node with the given id. The returned node has no Children.
func (f *Forest) Find(id string) (library.FolderNode, bool) {
	e, ok := f.nodes[id]
	if !ok {
		return library.FolderNode{}, false
	}
	return detach(e.node), true
}

// Insert creates a folder with a fresh id and a zero script count. A nil
// parentID creates a new root; otherwise the parent must exist.
func (f *Forest) Insert(name string, parentID *string) (library.FolderNode, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return library.FolderNode{}, err
	}

	var parent *entry
	if parentID != nil {
		p, ok := f.nodes[*parentID]
		if !ok {
			return library.FolderNode{}, domain.NewValidationError("parent folder %s does not exist", *parentID)
		}
		parent = p
	}

	id := f.newID()
	for f.taken(id) {
		id = f.newID()
	}

	node := library.FolderNode{
		ID:        id,
		Name:      name,
		CreatedAt: f.now(),
	}
	if parent != nil {
		pid := parent.node.ID
		node.ParentID = &pid
		parent.children = append(parent.children, id)
	} else {
		f.roots = append(f.roots, id)
	}
	f.nodes[id] = &entry{node: node}

	return detach(node), nil
}

// Rename replaces a folder's name
func (f *Forest) Rename(id, newName string) (library.FolderNode, error) {
	e, ok := f.nodes[id]
	if !ok {
		return library.FolderNode{}, domain.NewNotFoundError("folder", id)
	}
	name, err := NormalizeName(newName)
	if err != nil {
		return library.FolderNode{}, err
	}
	e.node.Name = name
	return detach(e.node), nil
}

// DeleteSubtree removes a folder and every descendant, returning the removed
// ids in pre-order (the folder itself first).
func (f *Forest) DeleteSubtree(id string) ([]string, error) {
	e, ok := f.nodes[id]
	if !ok {
		return nil, domain.NewNotFoundError("folder", id)
	}

	removed := f.subtreeIDs(id)

	if e.node.ParentID == nil {
		f.roots = slices.DeleteFunc(f.roots, func(s string) bool { return s == id })
	} else if parent, ok := f.nodes[*e.node.ParentID]; ok {
		parent.children = slices.DeleteFunc(parent.children, func(s string) bool { return s == id })
	}
	for _, rid := range removed {
		delete(f.nodes, rid)
	}

	return removed, nil
}

// Replace builds the forest that results from swapping f's folders for a
// caller-supplied nested list. Ids already in f keep their identity, creation
// time and cached script count. Any other id is a new folder: it gets a fresh
// id and a zero count, so an id deleted earlier never comes back. f is not
// modified. The second result lists the ids of f missing from the new forest.
func (f *Forest) Replace(nested []library.FolderNode) (*Forest, []string, error) {
	if err := Validate(nested); err != nil {
		return nil, nil, err
	}

	next := &Forest{
		nodes: make(map[string]*entry, len(f.nodes)),
		newID: f.newID,
		now:   f.now,
	}
	var load func(nodes []library.FolderNode, parentID *string) []string
	load = func(nodes []library.FolderNode, parentID *string) []string {
		ids := make([]string, 0, len(nodes))
		for _, n := range nodes {
			name, _ := NormalizeName(n.Name)
			node := library.FolderNode{Name: name}
			if cur, ok := f.nodes[n.ID]; ok {
				node.ID = n.ID
				node.ScriptCount = cur.node.ScriptCount
				node.CreatedAt = cur.node.CreatedAt
			} else {
				node.ID = f.newID()
				for f.taken(node.ID) || next.taken(node.ID) {
					node.ID = f.newID()
				}
				node.CreatedAt = f.now()
			}
			if parentID != nil {
				pid := *parentID
				node.ParentID = &pid
			}

			e := &entry{node: node}
			next.nodes[node.ID] = e
			id := node.ID
			e.children = load(n.Children, &id)
			ids = append(ids, id)
		}
		return ids
	}
	next.roots = load(nested, nil)

	var dropped []string
	for _, id := range f.IDs() {
		if !next.taken(id) {
			dropped = append(dropped, id)
		}
	}
	return next, dropped, nil
}

// SubtreeScriptCount sums the cached script counts of a folder and its descendants
func (f *Forest) SubtreeScriptCount(id string) (int, error) {
	if _, ok := f.nodes[id]; !ok {
		return 0, domain.NewNotFoundError("folder", id)
	}
	total := 0
	for _, sid := range f.subtreeIDs(id) {
		total += f.nodes[sid].node.ScriptCount
	}
	return total, nil
}

// AdjustScriptCount applies delta to a folder's cached count, clamping at zero
func (f *Forest) AdjustScriptCount(id string, delta int) (library.FolderNode, error) {
	e, ok := f.nodes[id]
	if !ok {
		return library.FolderNode{}, domain.NewNotFoundError("folder", id)
	}
	e.node.ScriptCount = max(0, e.node.ScriptCount+delta)
	return detach(e.node), nil
}

// SetScriptCount overwrites a folder's cached count. Only the reconcile pass
// should call this; everything else goes through AdjustScriptCount.
func (f *Forest) SetScriptCount(id string, count int) error {
	e, ok := f.nodes[id]
	if !ok {
		return domain.NewNotFoundError("folder", id)
	}
	e.node.ScriptCount = max(0, count)
	return nil
}

// SumScriptCounts returns the sum of all cached folder counts
func (f *Forest) SumScriptCounts() int {
	total := 0
	for _, e := range f.nodes {
		total += e.node.ScriptCount
	}
	return total
}

// IDs returns every folder id in pre-order
func (f *Forest) IDs() []string {
	ids := make([]string, 0, len(f.nodes))
	f.Walk(func(n library.FolderNode, _ int) {
		ids = append(ids, n.ID)
	})
	return ids
}

// Walk visits every node in pre-order with its depth (roots are depth 0)
func (f *Forest) Walk(fn func(node library.FolderNode, depth int)) {
	var visit func(ids []string, depth int)
	visit = func(ids []string, depth int) {
		for _, id := range ids {
			e := f.nodes[id]
			fn(detach(e.node), depth)
			visit(e.children, depth+1)
		}
	}
	visit(f.roots, 0)
}

// Path returns the slash-joined folder names from the root down to id
func (f *Forest) Path(id string) (string, bool) {
	var parts []string
	for cur := id; ; {
		e, ok := f.nodes[cur]
		if !ok {
			return "", false
		}
		parts = append(parts, e.node.Name)
		if e.node.ParentID == nil {
			break
		}
		cur = *e.node.ParentID
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/"), true
}

func (f *Forest) taken(id string) bool {
	_, ok := f.nodes[id]
	return ok || id == ""
}

func (f *Forest) subtreeIDs(id string) []string {
	var ids []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ids = append(ids, cur)
		children := f.nodes[cur].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return ids
}

// NormalizeName trims a folder name and rejects blank or over-long names
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("folder name cannot be empty")
	}
	if len(name) > config.MaxFolderNameLength {
		return "", domain.NewValidationError("folder name exceeds %d characters", config.MaxFolderNameLength)
	}
	return name, nil
}

// detach copies a node without its children and with its own ParentID pointer
func detach(n library.FolderNode) library.FolderNode {
	n.Children = nil
	if n.ParentID != nil {
		pid := *n.ParentID
		n.ParentID = &pid
	}
	return n
}
