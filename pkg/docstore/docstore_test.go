package docstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := docstore.New(
		domain.Document{Name: "a.md", Content: "one"},
		domain.Document{Name: "a.md", Content: "two"},
	)
	assert.ErrorIs(t, err, domain.ErrDuplicateDocument)
}

func TestSet_Accessors(t *testing.T) {
	set, err := docstore.New(
		domain.Document{Name: "b.md", Content: "B"},
		domain.Document{Name: "a.md", Content: "A"},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"b.md", "a.md"}, set.Names())

	doc, ok := set.Get("a.md")
	require.True(t, ok)
	assert.Equal(t, "A", doc.Content)

	_, ok = set.Get("missing.md")
	assert.False(t, ok)

	all := set.All()
	all[0].Content = "mutated"
	again, _ := set.Get("b.md")
	assert.Equal(t, "B", again.Content, "All must return a copy")
}

func TestSet_Capped(t *testing.T) {
	set, err := docstore.New(domain.Document{Name: "a.md", Content: "ééééé"})
	require.NoError(t, err)

	assert.Equal(t, "ééé", set.Capped(3)[0].Content)
	assert.Equal(t, "ééééé", set.Capped(0)[0].Content)
	assert.Equal(t, "ééééé", set.Capped(10)[0].Content)
}

func TestNilSet(t *testing.T) {
	var set *docstore.Set
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.All())
	_, ok := set.Get("x")
	assert.False(t, ok)
}

func TestLoadDir_KeepsOnlyMarkdown(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("05_steps.md", "## STEP Intro\n")
	write("01_context.MD", "context")
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	set, err := docstore.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"01_context.MD", "05_steps.md"}, set.Names())

	doc, ok := set.Get("05_steps.md")
	require.True(t, ok)
	assert.Equal(t, "## STEP Intro\n", doc.Content)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := docstore.LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadFiles_AllOrNothing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o644))

	set, err := docstore.LoadFiles(context.Background(), good, filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
	assert.Nil(t, set)
}

func TestFromUploads(t *testing.T) {
	set, err := docstore.FromUploads(
		docstore.Upload{Name: "scenario.md", Content: "x"},
		docstore.Upload{Name: "cover.png", Content: "binary"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"scenario.md"}, set.Names())

	_, err = docstore.FromUploads(
		docstore.Upload{Name: "a.md"},
		docstore.Upload{Name: "a.md"},
	)
	assert.ErrorIs(t, err, domain.ErrDuplicateDocument)
}
