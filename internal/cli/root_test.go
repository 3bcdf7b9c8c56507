package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineEnv points every command at a temp SQLite file and the local
// backends.
func offlineEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "reviews.db"))
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "outputs"))
	t.Setenv("CLASSIFIER_BACKEND", "vader")
	t.Setenv("GENERATOR_BACKEND", "template")
	t.Setenv("VALKEY_ADDRESS", "")
	t.Setenv("KAFKA_BROKER", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "feedback", "trends", "seed"} {
		assert.Contains(t, names, want)
	}
}

func TestSeedThenTrends(t *testing.T) {
	dir := offlineEnv(t)

	out, err := run(t, "seed", "--count", "40", "--days", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "stored 40 sample reviews")

	out, err = run(t, "trends", "last", "7", "days", "--chart", "stacked-bar", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Artifact string `json:"artifact"`
		Series   []struct {
			Total int `json:"total"`
		} `json:"series"`
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 40, resp.Summary.Total)
	assert.Len(t, resp.Series, 8)
	assert.True(t, strings.HasPrefix(resp.Artifact, filepath.Join(dir, "outputs")))

	_, err = os.Stat(resp.Artifact)
	assert.NoError(t, err)
}

func TestTrends_SummaryOnly(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, "trends", "--summary", "last week")
	require.NoError(t, err)
	assert.Contains(t, out, "Total reviews: 0")
	assert.NotContains(t, out, "Chart saved")
}

func TestTrends_Unparseable(t *testing.T) {
	offlineEnv(t)

	_, err := run(t, "trends", "whenever you like")
	require.Error(t, err)
}

func TestTrends_UnknownChart(t *testing.T) {
	offlineEnv(t)

	_, err := run(t, "trends", "last week", "--chart", "pie")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pie")
}

func TestFeedback_StoresResults(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, "feedback", "--format", "json",
		"The noodles were amazing and the staff were wonderful!",
		"Terrible service and cold food.")
	require.NoError(t, err)

	var lines []feedbackLine
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	require.Len(t, lines, 2)
	assert.Equal(t, "positive", lines[0].Sentiment)
	assert.Equal(t, "negative", lines[1].Sentiment)
	assert.NotEmpty(t, lines[0].Reply)
	assert.NotEmpty(t, lines[0].ID)

	out, err = run(t, "trends", "--summary", "last day")
	require.NoError(t, err)
	assert.Contains(t, out, "Total reviews: 2")
}

func TestFeedback_FromFile(t *testing.T) {
	dir := offlineEnv(t)
	path := filepath.Join(dir, "reviews.txt")
	require.NoError(t, os.WriteFile(path, []byte("Great dumplings!\n\nAwful wait times.\n"), 0o644))

	out, err := run(t, "feedback", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "stored 2, duplicates 0, failed 0")
}

func TestFeedback_NoInput(t *testing.T) {
	offlineEnv(t)

	_, err := run(t, "feedback")
	assert.Error(t, err)
}

func TestFeedback_InvalidConfig(t *testing.T) {
	offlineEnv(t)
	t.Setenv("CLASSIFIER_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := run(t, "feedback", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
