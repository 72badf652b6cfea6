package versionledger

import (
	"errors"
	"testing"
	"time"

	"scriptdesk/internal/domain"
	"scriptdesk/internal/domain/models/library"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func TestInitialize(t *testing.T) {
	versions := Initialize("FADE IN:", t0)
	if len(versions) != 1 {
		t.Fatalf("len: got %d, want 1", len(versions))
	}
	if v := versions[0]; v.Version != 1 || v.Content != "FADE IN:" || !v.CreatedAt.Equal(t0) {
		t.Errorf("unexpected first entry: %+v", v)
	}
	if err := Validate(versions); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAppend(t *testing.T) {
	base := Initialize("one", t0)
	next := Append(base, "two", t0.Add(time.Minute))

	if len(base) != 1 {
		t.Errorf("input ledger modified: len %d", len(base))
	}
	if Latest(next) != 2 {
		t.Errorf("latest: got %d, want 2", Latest(next))
	}
	if next[1].Content != "two" {
		t.Errorf("content: got %q", next[1].Content)
	}
	if err := Validate(next); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRevert(t *testing.T) {
	ledger := Initialize("one", t0)
	ledger = Append(ledger, "two", t0.Add(time.Minute))
	ledger = Append(ledger, "three", t0.Add(2*time.Minute))

	reverted, content, err := Revert(ledger, 1, t0.Add(3*time.Minute))
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if content != "one" {
		t.Errorf("restored content: got %q, want one", content)
	}
	if len(reverted) != 4 || reverted[3].Version != 4 || reverted[3].Content != "one" {
		t.Errorf("revert should append version 4 with the old content: %+v", reverted)
	}
	for i := range ledger {
		if reverted[i] != ledger[i] {
			t.Errorf("entry %d rewritten: %+v -> %+v", i+1, ledger[i], reverted[i])
		}
	}
}

func TestRevertUnknownVersion(t *testing.T) {
	ledger := Initialize("one", t0)

	for _, target := range []int{0, 2, -1} {
		got, content, err := Revert(ledger, target, t0)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("target %d: got %v, want validation error", target, err)
		}
		if content != "" || len(got) != 1 {
			t.Errorf("target %d: ledger changed", target)
		}
	}
}

func TestLatestEmpty(t *testing.T) {
	if got := Latest(nil); got != 0 {
		t.Errorf("Latest(nil) = %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		versions []library.ScriptVersion
		wantErr  bool
	}{
		{"empty", nil, true},
		{"starts at two", []library.ScriptVersion{{Version: 2, CreatedAt: t0}}, true},
		{
			"gap",
			[]library.ScriptVersion{{Version: 1, CreatedAt: t0}, {Version: 3, CreatedAt: t0}},
			true,
		},
		{
			"time goes backwards",
			[]library.ScriptVersion{{Version: 1, CreatedAt: t0}, {Version: 2, CreatedAt: t0.Add(-time.Second)}},
			true,
		},
		{
			"same timestamp",
			[]library.ScriptVersion{{Version: 1, CreatedAt: t0}, {Version: 2, CreatedAt: t0}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.versions)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
