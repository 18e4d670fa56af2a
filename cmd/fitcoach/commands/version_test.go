// ABOUTME: Tests for version command output
// ABOUTME: Verifies build information display

package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd_Output(t *testing.T) {
	SetVersion("1.2.3", "abc1234", "2026-09-01")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	outputStr := output.String()
	for _, want := range []string{"FitCoach 1.2.3", "abc1234", "2026-09-01"} {
		if !strings.Contains(outputStr, want) {
			t.Errorf("output %q missing %q", outputStr, want)
		}
	}
}
