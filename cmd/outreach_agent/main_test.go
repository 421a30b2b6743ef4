package main

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

// execute runs the CLI in-process and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const connectionsCSV = `First Name,Last Name,URL,Email Address,Company,Position,Connected On
Maya,Chen,https://www.linkedin.com/in/maya,maya@example.com,Epic Systems,Software Developer,15 May 2023
Raj,Patel,https://www.linkedin.com/in/raj,,Globex,Engineer,02 Jan 2021
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRouteCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"first degree", []string{"route", "--degree", "1st"}, "farmer"},
		{"network import", []string{"route", "--degree", "2nd", "--source", "csv_import"}, "farmer"},
		{"cold contact", []string{"route", "--degree", "2nd", "--source", "apollo"}, "hunter"},
		{"nothing known", []string{"route"}, "hunter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)

			var out map[string]string
			require.NoError(t, json.Unmarshal([]byte(stdout), &out))
			assert.Equal(t, tt.want, out["pipeline"])
		})
	}
}

func TestNetworkCommand_CompanyLookup(t *testing.T) {
	path := writeFile(t, "Connections.csv", connectionsCSV)

	stdout, stderr, err := execute(t, "", "network", "--csv", path, "--company", "Epic", "-v")
	require.NoError(t, err)

	var out struct {
		Company     string `json:"company"`
		Connections []struct {
			FirstName string `json:"first_name"`
		} `json:"connections"`
		Stats struct {
			Total int `json:"total_connections"`
		} `json:"network_stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 2, out.Stats.Total)
	require.Len(t, out.Connections, 1)
	assert.Equal(t, "Maya", out.Connections[0].FirstName)
	assert.Contains(t, stderr, "NETWORK STATS")
}

func TestNetworkCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "", "network")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"csv"`)

	_, _, err = execute(t, "", "network", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open connections export")

	bad := writeFile(t, "bad.csv", "Name,Employer\nAna,Initech\n")
	_, _, err = execute(t, "", "network", "--csv", bad)
	require.Error(t, err)
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		stdin       string
		errorString string
	}{
		{"generate without contact", []string{"generate", "--company", "Acme"}, "", "either --contact-id"},
		{"refine without message", []string{"refine", "--instruction", "shorter"}, "", "message"},
		{"context without id", []string{"context"}, "", "contact-id"},
		{"discover without target", []string{"discover"}, "", "exactly one of"},
		{"discover with both", []string{"discover", "--job-id", "rec1", "--pending"}, "", "exactly one of"},
		{"classify empty", []string{"classify"}, "  \n", "thought is empty"},
		{"content without page id", []string{"content"}, "", "accepts 1 arg(s)"},
		{"skill-check without jd", []string{"skill-check"}, "", "job-description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfigFileErrors(t *testing.T) {
	path := writeFile(t, "config.json", `{"hunter_max_length": 900}`)

	_, _, err := execute(t, "", "--config", path, "route")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSkillCheckWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	jd := writeFile(t, "jd.txt", "Epic certification required. Experience with Clarity reporting.")

	stdout, stderr, err := execute(t, "", "skill-check", "--job-description", jd, "--role", "Epic Analyst")
	require.NoError(t, err)

	var out struct {
		Skill            string `json:"skill"`
		RequirementFound bool   `json:"requirement_found"`
		HasGap           bool   `json:"has_gap"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "epic", out.Skill)
	assert.True(t, out.RequirementFound)
	assert.True(t, out.HasGap)
	assert.Contains(t, stderr, "resume lookups disabled")
}
