package watcher

import (
	"encoding/json"
	"time"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

func (e EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// FileEvent is one change under a watched project root.
type FileEvent struct {
	Root      string    `json:"root"`
	Path      string    `json:"path"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
