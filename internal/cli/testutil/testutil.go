// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/metacatalog/internal/cli/output"
)

// SeedYAML is a small linked catalog: two policies, three claims and a
// model. "hail" is filed 31 days after "home" for more than $5,000.
const SeedYAML = `assets:
  - ref: home
    type: Policy
    name: Homeowners Policy
    regTag: GDPR
    piiTag: true
    creationDate: 2024-01-01
  - ref: auto
    type: Policy
    name: Auto Policy
    creationDate: 2023-01-01
  - ref: hail
    type: Claim
    name: Hail Damage
    claimAmount: "6000"
    status: In Review
    policy: home
    creationDate: 2024-02-01
  - ref: flood
    type: Claim
    name: Basement Flood
    claimAmount: "1200"
    policy: home
    creationDate: 2024-03-01
  - ref: crash
    type: Claim
    name: Highway Crash
    claimAmount: "9000"
    policy: auto
    creationDate: 2024-03-01
  - type: Model
    name: Claim Severity Model
    sources: [hail, flood]
    creationDate: 2024-04-01
`

// SetupTestProject creates a temporary project with a config file whose
// store lives inside the project and a seed file. It returns the project
// directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tmpDir, "seeds"), 0o750); err != nil {
		t.Fatalf("failed to create seeds directory: %v", err)
	}

	config := `store:
  type: sqlite
  path: .metacatalog/catalog.db
seed:
  file: seeds/demo.yaml
`
	if err := os.WriteFile(filepath.Join(tmpDir, "metacatalog.yaml"), []byte(config), 0o600); err != nil {
		t.Fatalf("failed to create metacatalog.yaml: %v", err)
	}
	WriteSeedFile(t, filepath.Join(tmpDir, "seeds", "demo.yaml"))

	return tmpDir
}

// WriteSeedFile writes SeedYAML to path.
func WriteSeedFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(SeedYAML), 0o600); err != nil {
		t.Fatalf("failed to create seed file: %v", err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
