package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStr = "GUI:Start\n\"Start game\"\nEND\n\nGUI:Quit\n\"Quit %s\"\nEND\n"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(sampleStr), 0o644))
	return path
}

func TestConvertAndLookup(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "menu.str")
	csf := filepath.Join(dir, "menu.csf")

	run(t, "convert", in, csf)
	_, err := os.Stat(csf)
	require.NoError(t, err)

	out := run(t, "lookup", csf, "gui:quit")
	assert.Contains(t, out, "GUI:Quit")
	assert.Contains(t, out, "Quit %s")

	back := filepath.Join(dir, "back.str")
	run(t, "convert", csf, back)
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GUI:Start\r\n\"Start game\"\r\nEND\r\n")
}

func TestInfoListsCategories(t *testing.T) {
	in := writeSample(t, t.TempDir(), "menu.str")

	out := run(t, "info", in)
	assert.Contains(t, out, "GUI")
	assert.Contains(t, out, "Entries")
}

func TestLookupMissingLabel(t *testing.T) {
	in := writeSample(t, t.TempDir(), "menu.str")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "lookup", in, "GUI:Missing"})
	assert.Error(t, root.Execute())
}

func TestPublishAndPull(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, filepath.Join(dir, "tables"), "ui/menu.str")
	db := filepath.Join(dir, "tables.db")

	run(t, "--db", db, "publish", filepath.Join(dir, "tables"))

	out := run(t, "--db", db, "tables")
	assert.Contains(t, out, "ui.menu")

	pulled := filepath.Join(dir, "pulled.str")
	run(t, "--db", db, "pull", "ui.menu", pulled)
	data, err := os.ReadFile(pulled)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GUI:Quit\r\n\"Quit %s\"\r\nEND\r\n")
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "a.str")
	writeSample(t, dir, "sub/b.str")

	out := run(t, "scan", dir)
	assert.Contains(t, out, "a.str")
	assert.Contains(t, out, "ok")
}

func TestPublishReportsFailedTables(t *testing.T) {
	dir := t.TempDir()
	tables := filepath.Join(dir, "tables")
	writeSample(t, tables, "menu.str")
	require.NoError(t, os.WriteFile(filepath.Join(tables, "broken.csf"), []byte("junk"), 0o644))
	db := filepath.Join(dir, "tables.db")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "--db", db, "publish", tables})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 tables failed to load")
	assert.Contains(t, err.Error(), "broken.csf")

	out := run(t, "--db", db, "tables")
	assert.Contains(t, out, "menu")
}
