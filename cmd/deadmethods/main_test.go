package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/deadmethods/pkg/models"
)

func writeApp(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app/models/user.rb":            "class User\n  def orphan; end\n  def greet; end\nend\n",
		"app/views/users/show.html.erb": "<%= greet() %>\n",
		"app/helpers/users_helper.rb":   "module UsersHelper\n  def shout; end\nend\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(append([]string{"deadmethods"}, args...))
	return buf.String(), err
}

func TestFindUnused_Text(t *testing.T) {
	root := writeApp(t)
	out := filepath.Join(t.TempDir(), "report.txt")

	logged, err := runApp(t, "find_unused", "--root", root, "--no-progress", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, logged, "2 unused of 3 definitions, report written to "+out)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	want := "Unused methods found in your definition directories:\n" +
		filepath.FromSlash("app/models/user.rb") + ": orphan\n" +
		filepath.FromSlash("app/helpers/users_helper.rb") + ": shout\n"
	assert.Equal(t, want, string(content))
}

func TestFindUnused_JSON(t *testing.T) {
	root := writeApp(t)
	out := filepath.Join(t.TempDir(), "report.json")

	_, err := runApp(t, "fu", "--root", root, "--no-progress", "-f", "json", "-o", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var report models.UnusedReport
	require.NoError(t, json.Unmarshal(content, &report))

	require.Len(t, report.Findings, 2)
	assert.Equal(t, "orphan", report.Findings[0].Name)
	assert.Equal(t, 2, report.Findings[0].Line)
	assert.Equal(t, 3, report.Summary.TotalDefinitions)
	assert.NotEmpty(t, report.CorpusDigest)
}

func TestFindUnused_DirOverride(t *testing.T) {
	root := writeApp(t)
	out := filepath.Join(t.TempDir(), "report.txt")

	_, err := runApp(t, "find-unused", "--root", root, "--no-progress", "-d", "app/helpers", "-o", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Unused methods found in your definition directories:\n"+
		filepath.FromSlash("app/helpers/users_helper.rb")+": shout\n", string(content))
}

func TestFindUnused_NothingFound(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "report.txt")

	_, err := runApp(t, "find_unused", "--root", root, "--no-progress", "-o", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "No unused methods found!\n", string(content))
}

func TestFindUnused_UnknownFormat(t *testing.T) {
	root := writeApp(t)
	_, err := runApp(t, "find_unused", "--root", root, "--no-progress", "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestFindUnused_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "deadmethods.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[matcher]\npatterns = [\"telepathy\"]\n"), 0644))

	_, err := runApp(t, "-c", cfgPath, "find_unused", "--no-progress")
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	tests := []struct {
		as   string
		want []string
	}{
		{"toml", []string{"[scan]", "definition_dirs", "app/models"}},
		{"yaml", []string{"scan:", "definition_dirs:", "app/models"}},
	}
	for _, tt := range tests {
		t.Run(tt.as, func(t *testing.T) {
			out, err := runApp(t, "config", "show", "--as", tt.as)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestConfigShow_UnknownEncoding(t *testing.T) {
	_, err := runApp(t, "config", "show", "--as", "ini")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("[scan]\ndefinition_dirs = [\"app/models\"]\n"), 0644))
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[performance]\nworkers = -1\n"), 0644))

	out, err := runApp(t, "-c", good, "config", "validate")
	assert.NoError(t, err)
	assert.Contains(t, out, "Configuration valid: "+good)

	out, err = runApp(t, "-c", bad, "config", "validate")
	assert.Error(t, err)
	assert.Contains(t, out, "Configuration validation failed")
}

func TestConfigValidate_MissingDefinitionDir(t *testing.T) {
	root := writeApp(t)
	cfgPath := filepath.Join(t.TempDir(), "deadmethods.toml")
	content := fmt.Sprintf("[scan]\nroot = %q\ndefinition_dirs = [\"app/models\", \"app/services\"]\n\n[output]\ncolor = false\n", root)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	out, err := runApp(t, "-c", cfgPath, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid: "+cfgPath+"\n")
	assert.Contains(t, out, "WARNING: definition directory app/services not found under "+root+"\n")
	assert.NotContains(t, out, "app/models not found")
}
