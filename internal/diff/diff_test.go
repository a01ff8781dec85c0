package diff

import (
	"strings"
	"testing"
)

func TestUnified_Identical(t *testing.T) {
	content := []byte("(exclude_from_sim no)\n")
	p := Unified("a.kicad_sch", "a/a.kicad_sch", "b/a.kicad_sch", content, content, Options{})
	if p.Changed() {
		t.Errorf("identical content reported as changed: %+v", p)
	}
	if p.Body != "" {
		t.Errorf("Body = %q, want empty", p.Body)
	}
}

func TestUnified_AttributeFlip(t *testing.T) {
	old := []byte("(kicad_sch\n  (symbol\n    (exclude_from_sim yes)\n  )\n)\n")
	cur := []byte("(kicad_sch\n  (symbol\n    (exclude_from_sim no)\n  )\n)\n")

	p := Unified("a.kicad_sch", "sim_backup_3/a.kicad_sch", "a.kicad_sch", old, cur, Options{})
	if !p.Changed() {
		t.Fatal("expected a change")
	}
	if p.Added != 1 || p.Removed != 1 {
		t.Errorf("Added=%d Removed=%d, want 1/1", p.Added, p.Removed)
	}
	for _, want := range []string{
		"--- sim_backup_3/a.kicad_sch",
		"+++ a.kicad_sch",
		"-    (exclude_from_sim yes)",
		"+    (exclude_from_sim no)",
	} {
		if !strings.Contains(p.Body, want) {
			t.Errorf("patch missing %q:\n%s", want, p.Body)
		}
	}
}

func TestUnified_MissingSide(t *testing.T) {
	p := Unified("new.kicad_sch", "/dev/null", "new.kicad_sch", nil, []byte("x\ny\n"), Options{})
	if p.Added != 2 || p.Removed != 0 {
		t.Errorf("Added=%d Removed=%d, want 2/0", p.Added, p.Removed)
	}
}

func TestUnified_Oversize(t *testing.T) {
	p := Unified("a", "a", "b", []byte("12345"), []byte("67890"), Options{MaxBytes: 8})
	if !p.Oversize || !p.Changed() {
		t.Errorf("expected oversize placeholder, got %+v", p)
	}
	if !strings.Contains(p.Body, "diff omitted") {
		t.Errorf("Body = %q", p.Body)
	}
}

func TestSplitLinesKeepNL(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 2},
	}
	for _, tt := range tests {
		if got := splitLinesKeepNL(tt.in); len(got) != tt.want {
			t.Errorf("splitLinesKeepNL(%q) = %q, want %d lines", tt.in, got, tt.want)
		}
	}
}
