package foldertree

import (
	"errors"
	"testing"

	"scriptdesk/internal/domain"
	"scriptdesk/internal/domain/models/library"
)

func node(id string, parent *string, children ...library.FolderNode) library.FolderNode {
	return library.FolderNode{ID: id, Name: "folder " + id, ParentID: parent, Children: children}
}

func TestValidateHierarchy(t *testing.T) {
	tests := []struct {
		name   string
		forest []library.FolderNode
		want   bool
	}{
		{"empty forest", nil, true},
		{"single root", []library.FolderNode{node("a", nil)}, true},
		{
			"nested ok",
			[]library.FolderNode{node("a", nil, node("b", strPtr("a"), node("c", strPtr("b"))))},
			true,
		},
		{
			"duplicate across depths",
			[]library.FolderNode{node("a", nil, node("a", strPtr("a")))},
			false,
		},
		{
			"duplicate roots",
			[]library.FolderNode{node("a", nil), node("a", nil)},
			false,
		},
		{"root with parent", []library.FolderNode{node("a", strPtr("x"))}, false},
		{
			"child missing parent id",
			[]library.FolderNode{node("a", nil, node("b", nil))},
			false,
		},
		{
			"child points at wrong parent",
			[]library.FolderNode{node("a", nil, node("b", strPtr("z")))},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateHierarchy(tt.forest); got != tt.want {
				t.Errorf("ValidateHierarchy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	negative := node("a", nil)
	negative.ScriptCount = -1
	blank := node("a", nil)
	blank.Name = "  "

	tests := []struct {
		name   string
		forest []library.FolderNode
	}{
		{"empty id", []library.FolderNode{node("", nil)}},
		{"blank name", []library.FolderNode{blank}},
		{"negative count", []library.FolderNode{negative}},
		{"bad hierarchy", []library.FolderNode{node("a", nil, node("b", nil))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.forest); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}

	if err := Validate([]library.FolderNode{node("a", nil, node("b", strPtr("a")))}); err != nil {
		t.Errorf("valid forest rejected: %v", err)
	}
}

func TestFindByID(t *testing.T) {
	forest := []library.FolderNode{
		node("a", nil, node("b", strPtr("a"), node("c", strPtr("b")))),
		node("d", nil),
	}

	for _, id := range []string{"a", "c", "d"} {
		if n, ok := FindByID(forest, id); !ok || n.ID != id {
			t.Errorf("FindByID(%q) = %v, %v", id, n.ID, ok)
		}
	}
	if _, ok := FindByID(forest, "zzz"); ok {
		t.Error("found a missing id")
	}
}
