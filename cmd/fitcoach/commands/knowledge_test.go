// ABOUTME: Tests for knowledge command group structure
// ABOUTME: Verifies subcommands, flags, and document collection

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewKnowledgeCmd_Subcommands(t *testing.T) {
	cmd := NewKnowledgeCmd()

	expected := []string{"add", "search", "list", "stats", "remove", "clear", "init"}
	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			found := false
			for _, sub := range cmd.Commands() {
				if sub.Use == name || strings.HasPrefix(sub.Use, name+" ") {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Subcommand %q not found", name)
			}
		})
	}
}

func TestKnowledgeAddCmd_Flags(t *testing.T) {
	cmd := newKnowledgeAddCmd()

	tests := []struct {
		flagName string
		defValue string
	}{
		{"file", ""},
		{"origin", ""},
		{"id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestKnowledgeSearchCmd_LimitFlag(t *testing.T) {
	cmd := newKnowledgeSearchCmd()

	flag := cmd.Flags().Lookup("limit")
	if flag == nil {
		t.Fatal("--limit flag not found")
	}
	if flag.DefValue != "5" {
		t.Errorf("--limit default = %q, want %q", flag.DefValue, "5")
	}
}

func TestCollectDocuments(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"squats.md":          "Squats build leg strength.",
		"nested/protein.txt": "Protein supports muscle repair.",
		"ignore.pdf":         "binary content",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	docs, err := collectDocuments(dir)
	if err != nil {
		t.Fatalf("collectDocuments() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("collected %d documents, want 2 (.pdf skipped)", len(docs))
	}

	ids := map[string]bool{}
	for _, d := range docs {
		ids[d.ID] = true
		if d.Text == "" {
			t.Errorf("document %s has empty text", d.ID)
		}
		if d.Origin != d.ID {
			t.Errorf("origin = %q, want relative path %q", d.Origin, d.ID)
		}
	}
	if !ids["squats.md"] || !ids[filepath.Join("nested", "protein.txt")] {
		t.Errorf("unexpected document IDs: %v", ids)
	}
}

func TestCollectDocuments_MissingDir(t *testing.T) {
	if _, err := collectDocuments(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
