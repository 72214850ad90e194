// Package backlog keeps the user stories an editor session is working
// through, with the draft → active → review → completed lifecycle. Only one
// story is active at a time.
package backlog

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusReview    Status = "review"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusActive, StatusReview, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown story status %q", s)
}

var (
	ErrNotFound   = errors.New("story not found")
	ErrEmptyTitle = errors.New("story title is empty")
	ErrEmptyPath  = errors.New("file path is empty")
)

type Story struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified time.Time  `json:"lastModified"`
	ActivatedAt  *time.Time `json:"activatedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// StoryFile is code generated while working on a story. Files belong to
// their story and are removed with it.
type StoryFile struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"storyId"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

const DefaultLanguage = "javascript"
