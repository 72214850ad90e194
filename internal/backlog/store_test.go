package backlog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndList(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Create("  user wants to log in ")
	require.NoError(t, err)
	assert.Equal(t, "user wants to log in", a.Title)
	assert.Equal(t, StatusDraft, a.Status)
	assert.NotEmpty(t, a.ID)

	_, err = s.Create("user wants to log out")
	require.NoError(t, err)

	titles, err := s.Titles()
	require.NoError(t, err)
	assert.Equal(t, []string{"user wants to log in", "user wants to log out"}, titles)
}

func TestCreateEmptyTitle(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("   ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)
	stories, err := s.List()
	require.NoError(t, err)
	assert.NotNil(t, stories)
	assert.Empty(t, stories)
}

func TestActivateDemotesPrevious(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("a")
	b, _ := s.Create("b")

	got, err := s.Activate(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	require.NotNil(t, got.ActivatedAt)

	_, err = s.Activate(b.ID)
	require.NoError(t, err)

	prev, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, prev.Status)

	active, err := s.ActiveID()
	require.NoError(t, err)
	assert.Equal(t, b.ID, active)
}

func TestActivateUnknown(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Activate("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSetStatusCompleted(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("a")

	got, err := s.SetStatus(a.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	_, err = s.SetStatus(a.ID, Status("archived"))
	assert.Error(t, err)
}

func TestEditAndDelete(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("a")

	got, err := s.Edit(a.ID, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	_, err = s.Edit("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(a.ID))
	assert.ErrorIs(t, s.Delete(a.ID), ErrNotFound)

	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanActivate(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("a")
	b, _ := s.Create("b")

	ok, err := s.CanActivate(a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Activate(a.ID)
	require.NoError(t, err)

	ok, _ = s.CanActivate(a.ID)
	assert.False(t, ok, "already active")
	ok, _ = s.CanActivate(b.ID)
	assert.False(t, ok, "another story is active")
	ok, _ = s.CanActivate("missing")
	assert.False(t, ok)
}

func TestCanReactivate(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("a")
	b, _ := s.Create("b")

	ok, _ := s.CanReactivate(a.ID)
	assert.False(t, ok, "draft cannot be reactivated")

	_, err := s.SetStatus(a.ID, StatusReview)
	require.NoError(t, err)
	ok, _ = s.CanReactivate(a.ID)
	assert.True(t, ok)

	_, err = s.Activate(b.ID)
	require.NoError(t, err)
	ok, _ = s.CanReactivate(a.ID)
	assert.False(t, ok, "blocked while another story is active")
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"draft", "active", "review", "completed"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}
	_, err := ParseStatus("DRAFT")
	assert.Error(t, err)
}

func TestAddFileAndFiles(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Create("user wants to log in")
	require.NoError(t, err)

	a, err := s.AddFile(st.ID, "routes.js", "const a = 1;", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, a.Language)
	assert.Equal(t, st.ID, a.StoryID)

	_, err = s.AddFile(st.ID, "README.md", "# app", "markdown")
	require.NoError(t, err)

	files, err := s.Files(st.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "routes.js", files[0].Path)
	assert.Equal(t, "const a = 1;", files[0].Content)
	assert.Equal(t, "markdown", files[1].Language)
}

func TestAddFileErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddFile("nope", "routes.js", "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := s.Create("story")
	require.NoError(t, err)
	_, err = s.AddFile(st.ID, "  ", "", "")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = s.Files("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesFiles(t *testing.T) {
	s := newTestStore(t)
	keep, err := s.Create("keep")
	require.NoError(t, err)
	drop, err := s.Create("drop")
	require.NoError(t, err)

	_, err = s.AddFile(keep.ID, "a.js", "a", "")
	require.NoError(t, err)
	_, err = s.AddFile(drop.ID, "b.js", "b", "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(drop.ID))

	var orphans int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM story_files WHERE story_id = ?", drop.ID).Scan(&orphans))
	assert.Zero(t, orphans)

	files, err := s.Files(keep.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
