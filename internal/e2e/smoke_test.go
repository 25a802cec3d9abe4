package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const launchLink = "https://major.bot/#tgWebAppData=query_id%3DAAH%26user%3D%257B%2522id%2522%253A42%252C%2522first_name%2522%253A%2522Ann%2522%257D%26auth_date%3D1724340000%26hash%3Dabc&tgWebAppVersion=7.8"

func TestSmokeFlow(t *testing.T) {
	workDir := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runMajor(t, binaryPath, workDir, "config", "init")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "wrote major.toml")
	assert.FileExists(t, filepath.Join(workDir, "major.toml"))

	_, _, err = runMajor(t, binaryPath, workDir, "accounts", "list")
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(workDir, "urls.txt"))

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "urls.txt"), []byte(launchLink+"\n"), 0o600))

	stdout, stderr, err = runMajor(t, binaryPath, workDir, "accounts", "list", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	require.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"label": "[42_Ann]"`)
	assert.Contains(t, stdout, `"has_token": false`)
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "major-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/major")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build major binary: %s", string(output))
	return binaryPath
}

func runMajor(t *testing.T, binaryPath, workDir string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "HOME="+workDir)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
