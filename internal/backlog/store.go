package backlog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alucardeht/forge/internal/logger"
)

var log = logger.ForComponent("backlog")

type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (creating if needed) the backlog database at dbPath. Use
// ":memory:" for a throwaway store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection so :memory: databases are shared and writes serialize
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("backlog: init schema: %w", err)
	}

	log.Debug("backlog opened", "path", dbPath)
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stories (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at DATETIME NOT NULL,
		last_modified DATETIME NOT NULL,
		activated_at DATETIME,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_stories_status ON stories(status);

	CREATE TABLE IF NOT EXISTS story_files (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		story_id TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		content TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_story_files_story ON story_files(story_id);
	`

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const selectStory = `SELECT id, title, status, created_at, last_modified, activated_at, completed_at FROM stories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*Story, error) {
	var (
		st        Story
		status    string
		activated sql.NullTime
		completed sql.NullTime
	)
	if err := row.Scan(&st.ID, &st.Title, &status, &st.CreatedAt, &st.LastModified, &activated, &completed); err != nil {
		return nil, err
	}
	st.Status = Status(status)
	if activated.Valid {
		t := activated.Time
		st.ActivatedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		st.CompletedAt = &t
	}
	return &st, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create adds a draft story with a trimmed title.
func (s *Store) Create(title string) (*Story, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := &Story{
		ID:           uuid.NewString(),
		Title:        title,
		Status:       StatusDraft,
		CreatedAt:    now,
		LastModified: now,
	}

	_, err := s.db.Exec(
		"INSERT INTO stories (id, title, status, created_at, last_modified) VALUES (?, ?, ?, ?, ?)",
		st.ID, st.Title, string(st.Status), st.CreatedAt, st.LastModified,
	)
	if err != nil {
		return nil, err
	}

	log.Info("story created", "id", st.ID)
	return st, nil
}

func (s *Store) Get(id string) (*Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(s.db, id)
}

func (s *Store) getLocked(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, id string) (*Story, error) {
	st, err := scanStory(q.QueryRow(selectStory+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st, err
}

// List returns every story in creation order.
func (s *Store) List() ([]*Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(selectStory + " ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := make([]*Story, 0)
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

// Titles returns story titles in creation order.
func (s *Store) Titles() ([]string, error) {
	stories, err := s.List()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(stories))
	for _, st := range stories {
		titles = append(titles, st.Title)
	}
	return titles, nil
}

// Activate makes id the active story. Whatever story was active before goes
// back to draft.
func (s *Store) Activate(id string) (*Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.getLocked(tx, id); err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := tx.Exec(
		"UPDATE stories SET status = ? WHERE status = ? AND id <> ?",
		string(StatusDraft), string(StatusActive), id,
	); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(
		"UPDATE stories SET status = ?, activated_at = ?, last_modified = ? WHERE id = ?",
		string(StatusActive), now, now, id,
	); err != nil {
		return nil, err
	}

	st, err := s.getLocked(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("story activated", "id", id)
	return st, nil
}

// SetStatus moves a story to status. Completing a story stamps CompletedAt.
// Setting StatusActive this way does not demote other stories; use Activate.
func (s *Store) SetStatus(id string, status Status) (*Story, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.getLocked(s.db, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	completed := cur.CompletedAt
	if status == StatusCompleted {
		completed = &now
	}

	if _, err := s.db.Exec(
		"UPDATE stories SET status = ?, last_modified = ?, completed_at = ? WHERE id = ?",
		string(status), now, nullTime(completed), id,
	); err != nil {
		return nil, err
	}

	return s.getLocked(s.db, id)
}

func (s *Store) Edit(id, title string) (*Story, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE stories SET title = ?, last_modified = ? WHERE id = ?",
		title, s.now(), id,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.getLocked(s.db, id)
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	log.Info("story deleted", "id", id)
	return nil
}

// AddFile records a generated file against a story. An empty language
// means DefaultLanguage.
func (s *Store) AddFile(storyID, path, content, language string) (*StoryFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}
	if language == "" {
		language = DefaultLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getLocked(s.db, storyID); err != nil {
		return nil, err
	}

	f := &StoryFile{
		ID:        uuid.NewString(),
		StoryID:   storyID,
		Path:      path,
		Content:   content,
		Language:  language,
		CreatedAt: s.now(),
	}
	if _, err := s.db.Exec(
		"INSERT INTO story_files (id, story_id, path, content, language, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		f.ID, f.StoryID, f.Path, f.Content, f.Language, f.CreatedAt,
	); err != nil {
		return nil, err
	}

	log.Debug("story file added", "story", storyID, "path", path)
	return f, nil
}

// Files returns a story's generated files in the order they were added.
func (s *Store) Files(storyID string) ([]*StoryFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getLocked(s.db, storyID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT id, story_id, path, content, language, created_at FROM story_files WHERE story_id = ? ORDER BY seq",
		storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]*StoryFile, 0)
	for rows.Next() {
		var f StoryFile
		if err := rows.Scan(&f.ID, &f.StoryID, &f.Path, &f.Content, &f.Language, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// ActiveID returns the active story's id, or "" when none is active.
func (s *Store) ActiveID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.db.QueryRow("SELECT id FROM stories WHERE status = ? ORDER BY seq LIMIT 1", string(StatusActive)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// CanActivate reports whether id exists, is not active, and no other story
// is active.
func (s *Store) CanActivate(id string) (bool, error) {
	st, active, err := s.targetAndActive(id)
	if err != nil || st == nil {
		return false, err
	}
	return st.Status != StatusActive && active == "", nil
}

// CanReactivate reports whether id is in review or completed and no story
// is active.
func (s *Store) CanReactivate(id string) (bool, error) {
	st, active, err := s.targetAndActive(id)
	if err != nil || st == nil {
		return false, err
	}
	if active != "" {
		return false, nil
	}
	return st.Status == StatusReview || st.Status == StatusCompleted, nil
}

func (s *Store) targetAndActive(id string) (*Story, string, error) {
	st, err := s.Get(id)
	if errors.Is(err, ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	active, err := s.ActiveID()
	return st, active, err
}
