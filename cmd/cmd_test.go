package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artcava/XPoster/cmd"
	"github.com/artcava/XPoster/internal/config"
)

const testConfig = `
logging:
  level: warn
  output_paths: ["stderr"]
schedule:
  timezone: UTC
slots:
  - {hour: 6, strategy: feedsummary, channel: linkedin}
  - {hour: 16, strategy: valuation, channel: x}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "xposter version "+cmd.Version)
}

func TestSlots_PrintsWholeDay(t *testing.T) {
	out, err := execute(t, "slots", "--config", writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Regexp(t, `06\W+feedsummary\W+linkedin`, out)
	assert.Regexp(t, `16\W+valuation\W+x`, out)
	assert.Regexp(t, `03\W+nosend\W+none`, out)
	assert.Contains(t, out, "23")
}

func TestRun_UnmappedHourIsSkipped(t *testing.T) {
	out, err := execute(t, "run", "--config", writeConfig(t, testConfig), "--at", "2025-07-21T03:00:00Z")
	require.NoError(t, err)

	assert.Contains(t, out, "nosend/none")
	assert.Contains(t, out, "outcome=skipped")
	assert.Contains(t, out, "sent=false")
}

func TestRun_RejectsBadAt(t *testing.T) {
	_, err := execute(t, "run", "--config", writeConfig(t, testConfig), "--at", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--at")
}

func TestSetup_RejectsInvalidSlotTable(t *testing.T) {
	path := writeConfig(t, `
slots:
  - {hour: 8, strategy: valuation, channel: x}
  - {hour: 8, strategy: feedsummary, channel: linkedin}
`)

	_, err := execute(t, "slots", "--config", path)
	require.Error(t, err)
	_, ok := config.AsValidationError(err)
	assert.True(t, ok)
}

func TestSetup_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "slots", "--config", filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}
