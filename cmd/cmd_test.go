package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/novagen/internal/assembler"
	"github.com/kamusis/novagen/internal/cache"
	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/search"
)

// isolate points HOME at a temp dir and disables generative merging and
// embeddings credentials.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("USE_AI_MERGING", "false")
	for _, k := range []string{
		"NOVAGEN_AI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"NOVAGEN_EMBEDDINGS_API_KEY", "NOVAGEN_EMBEDDINGS_PROVIDER",
	} {
		t.Setenv(k, "")
	}
	return home
}

func resetFlags() {
	flagConfig, flagLogLevel = "", ""
	flagBuildComponents, flagBuildJSON = false, false
	flagTopK, flagTopScores = 0, false
	flagMergeExport, flagMergeStrategy, flagMergeQuery = "", "", ""
	flagSuggestIndex, flagSuggestKeyword, flagSuggestSemantic = false, false, false
	flagSuggestK, flagSuggestMinScore = 5, 0
	flagSuggestDebug, flagSuggestForce = false, false
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var buf bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &buf, &buf
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })

	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestBuild_DirectThenCache(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "build", "--components", "login", "form")
	require.NoError(t, err)
	assert.Contains(t, out, "// components: ")
	assert.Contains(t, out, "(direct)")
	assert.Contains(t, out, "export default function LoginForm() {")
	assert.Contains(t, out, "from '@visa/nova-react';")

	out, err = run(t, "build", "--json", "  Login Form ")
	require.NoError(t, err)
	var got buildOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "cache", got.Source)
	assert.Len(t, got.Components, 3)

	_, err = os.Stat(filepath.Join(home, ".novagen", "pattern-dataset.csv"))
	require.NoError(t, err)

	out, err = run(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 records)")
	assert.Contains(t, out, "login form")

	out, err = run(t, "cache", "show", "LOGIN FORM")
	require.NoError(t, err)
	assert.Contains(t, out, "export default function LoginForm() {")

	out, err = run(t, "cache", "show", "nothing here")
	require.NoError(t, err)
	assert.Contains(t, out, `no cached component for "nothing here"`)
}

func TestTop(t *testing.T) {
	isolate(t)

	out, err := run(t, "top", "-k", "2", "profile")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1. Avatar", lines[0])

	out, err = run(t, "top", "--scores", "data", "table")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1."))
	assert.Contains(t, out, "Table")
}

func TestMerge_Layout(t *testing.T) {
	isolate(t)

	out, err := run(t, "merge", "Input", "Checkbox", "Button", "--export", "LoginForm", "--strategy", "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "export default function LoginForm() {")
	assert.Contains(t, out, "<form")

	_, err = run(t, "merge", "Nope")
	assert.ErrorIs(t, err, catalog.ErrComponentNotFound)

	_, err = run(t, "merge", "Button", "--strategy", "mystery")
	assert.ErrorContains(t, err, "unknown merge strategy")
}

func TestMerge_GenerativeFallsBack(t *testing.T) {
	isolate(t)

	out, err := run(t, "merge", "Avatar", "Badge", "--strategy", "generative", "--query", "user profile")
	require.NoError(t, err)
	assert.Contains(t, out, "generative merge unavailable, used layout")
	assert.Contains(t, out, "export default function UserProfile() {")
}

func TestInspect(t *testing.T) {
	isolate(t)

	out, err := run(t, "inspect", "Checkbox")
	require.NoError(t, err)
	assert.Contains(t, out, "Variant 1 (merged):")
	assert.Contains(t, out, "remember me")

	_, err = run(t, "inspect", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean: Checkbox")
}

func TestSuggest_KeywordFallback(t *testing.T) {
	isolate(t)

	out, err := run(t, "suggest", "-k", "1", "breadcrumb", "navigation")
	require.NoError(t, err)
	assert.Contains(t, out, "Suggestions (1 found):")
	assert.Contains(t, out, "Breadcrumbs")

	_, err = run(t, "suggest", "--semantic", "navigation")
	assert.Error(t, err)
}

func TestInit_DoesNotOverwrite(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Config written")
	assert.FileExists(t, filepath.Join(home, ".novagen", "novagen.yaml"))
	assert.FileExists(t, filepath.Join(home, ".novagen", ".env"))

	out, err = run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Config already exists")
	assert.Contains(t, out, ".env already exists")
}

func TestDoctor(t *testing.T) {
	isolate(t)

	out, err := run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "components (embedded)")
	assert.Contains(t, out, "disabled (USE_AI_MERGING is not true)")
	assert.Contains(t, out, "all checks passed")

	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache_backend: tape\n"), 0o644))
	_, err = run(t, "--config", cfgPath, "doctor")
	assert.ErrorContains(t, err, "doctor found problems")
}

func TestWriteBuildResult(t *testing.T) {
	res := assembler.Result{Code: "export default function X() {}", Source: assembler.SourceDirect}

	var buf bytes.Buffer
	require.NoError(t, writeBuildResult(&buf, res, false, false))
	assert.Equal(t, "export default function X() {}\n", buf.String())

	buf.Reset()
	require.NoError(t, writeBuildResult(&buf, res, true, false))
	assert.Contains(t, buf.String(), `"components": []`)
}

func TestMergeExportName(t *testing.T) {
	assert.Equal(t, "Custom", mergeExportName(" Custom ", "login form"))
	assert.Equal(t, "LoginForm", mergeExportName("", "login form"))
	assert.Equal(t, "Generated", mergeExportName("", ""))
}

func TestPrintScores_Empty(t *testing.T) {
	var buf bytes.Buffer
	printScores(&buf, []search.ScoredCandidate{}, 3)
	assert.Equal(t, "no component scored above zero\n", buf.String())
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, []cache.Record{{Query: "login form", Components: []string{"Input", "Button"}}})
	assert.Contains(t, buf.String(), "login form  Input, Button")
}
