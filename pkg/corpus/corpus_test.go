package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/deadmethods/pkg/config"
	"github.com/panbanda/deadmethods/pkg/source"
	"github.com/panbanda/deadmethods/pkg/strip"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func rel(parts ...string) string {
	return filepath.Join(parts...)
}

func TestSnapshot_Ordered(t *testing.T) {
	s := NewSnapshot(map[string]string{
		"b.rb": "b",
		"a.rb": "a",
		"c.js": "c",
	})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a.rb", "b.rb", "c.js"}, s.Paths())

	content, ok := s.Content("b.rb")
	assert.True(t, ok)
	assert.Equal(t, "b", content)

	_, ok = s.Content("missing.rb")
	assert.False(t, ok)
	assert.True(t, s.Contains("c.js"))
}

func TestSnapshot_Digest(t *testing.T) {
	a := NewSnapshot(map[string]string{"a.rb": "def foo; end", "b.rb": "foo"})
	b := NewSnapshot(map[string]string{"b.rb": "foo", "a.rb": "def foo; end"})
	c := NewSnapshot(map[string]string{"a.rb": "def foo; end", "b.rb": "bar"})
	d := NewSnapshot(map[string]string{"a.rbd": "ef foo; end", "b.rb": "foo"})

	assert.Len(t, a.Digest(), 64)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
	assert.NotEqual(t, a.Digest(), d.Digest())
}

func testConfig(root string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scan.Root = root
	return cfg
}

func TestBuilder_Paths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/models/a.rb":          "",
		"app/views/a/show.erb":     "",
		"app/javascript/app.js":    "",
		"app/assets/logo.png":      "",
		"lib/tasks/util.rb":        "",
		"lib/templates/x.erb":      "",
		"config/initializers/x.rb": "",
	})

	b := NewBuilder(testConfig(root))
	paths, err := b.Paths([]string{rel("app", "models", "a.rb"), rel("engines", "e.rb")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		rel("app", "javascript", "app.js"),
		rel("app", "models", "a.rb"),
		rel("app", "views", "a", "show.erb"),
		rel("engines", "e.rb"),
		rel("lib", "tasks", "util.rb"),
	}, paths)
}

func TestBuilder_Build(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/models/a.rb":      "def foo # calls qux\n  \"qux\"\nend\n",
		"app/views/a/show.erb": "<%# qux %><%= foo(1) %>\n",
		"app/javascript/a.js":  "foo(); // qux()\n",
	})

	b := NewBuilder(testConfig(root))
	snap, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 3, snap.Len())

	content, ok := snap.Content(rel("app", "models", "a.rb"))
	require.True(t, ok)
	assert.Equal(t, "def foo \n  \"\"\nend\n", content)

	content, _ = snap.Content(rel("app", "views", "a", "show.erb"))
	assert.Equal(t, "<%= foo(1) %>\n", content)

	content, _ = snap.Content(rel("app", "javascript", "a.js"))
	assert.Equal(t, "foo(); \n", content)
	assert.Empty(t, snap.Skipped())
}

func TestBuilder_StripStringsDisabled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"app/a.rb": "x = 'qux'\n"})

	cfg := testConfig(root)
	cfg.Matcher.StripStrings = false
	snap, err := NewBuilder(cfg).Build(context.Background(), nil)
	require.NoError(t, err)

	content, _ := snap.Content(rel("app", "a.rb"))
	assert.Equal(t, "x = 'qux'\n", content)
}

func TestBuilder_SkipsUnreadable(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"app/models/a.rb": "def foo; end",
	})
	cfg := testConfig(t.TempDir())

	b := NewBuilder(cfg, WithSource(src), WithWorkers(1))
	snap, err := b.Load(context.Background(), []string{"app/models/a.rb", "app/models/gone.rb"})
	require.NoError(t, err)

	assert.Equal(t, []string{"app/models/a.rb"}, snap.Paths())
	assert.Equal(t, []string{"app/models/gone.rb"}, snap.Skipped())
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(testConfig(t.TempDir()), WithSource(source.NewMemory(map[string]string{"a.rb": ""})))
	_, err := b.Load(ctx, []string{"a.rb"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_MemoSharesIdenticalContent(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a/_row.erb": "<%# note %><%= row %>",
		"b/_row.erb": "<%# note %><%= row %>",
		"c/_row.rb":  "<%# note %><%= row %>",
	})
	b := NewBuilder(testConfig(t.TempDir()), WithSource(src))

	snap, err := b.Load(context.Background(), []string{"a/_row.erb", "b/_row.erb", "c/_row.rb"})
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, 2, b.memo.Len())
}

func TestStripMemo_CollidingKeyStripsAfresh(t *testing.T) {
	r := strip.NewRegistry()
	m := newStripMemo()

	raw := "def foo # bar\n"
	m.entries[memoKey(raw, ".rb")] = memoEntry{raw: "other", ext: ".rb", out: "def other\n"}

	assert.Equal(t, "def foo \n", m.strip(r, raw, ".rb"))
	assert.Equal(t, "def other\n", m.strip(r, "other", ".rb"))
	assert.Equal(t, 1, m.Len())
}

func TestStripMemo_ExtensionIsPartOfTheEntry(t *testing.T) {
	r := strip.NewRegistry()
	m := newStripMemo()

	assert.Equal(t, "x \n", m.strip(r, "x # c\n", ".rb"))
	assert.Equal(t, "x # c\n", m.strip(r, "x # c\n", ".txt"))
	assert.Equal(t, "x \n", m.strip(r, "x # c\n", ".rb"))
	assert.Equal(t, 2, m.Len())
}

func TestBuilder_MissingTrees(t *testing.T) {
	b := NewBuilder(testConfig(t.TempDir()))
	snap, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}
