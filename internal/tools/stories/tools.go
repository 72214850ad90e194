// Package stories exposes the story backlog as editor commands.
package stories

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/forge/internal/backlog"
	"github.com/alucardeht/forge/internal/generate"
	"github.com/alucardeht/forge/internal/tools"
)

func GetTools(store *backlog.Store) []tools.Tool {
	return []tools.Tool{
		&CreateTool{store: store},
		&ListTool{store: store},
		&ActivateTool{store: store},
		&SetStatusTool{store: store},
		&EditTool{store: store},
		&DeleteTool{store: store},
		&RoutesTool{store: store},
		&AddFileTool{store: store},
		&FilesTool{store: store},
	}
}

type storyRequest struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

func decode(input json.RawMessage, needID bool) (storyRequest, error) {
	var req storyRequest
	if err := tools.Decode(input, &req); err != nil {
		return req, err
	}
	if needID && req.ID == "" {
		return req, tools.Required("id")
	}
	return req, nil
}

const idSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "description": "Story id"}
	},
	"required": ["id"]
}`

const emptySchema = `{
	"type": "object",
	"properties": {},
	"required": []
}`

type CreateTool struct{ store *backlog.Store }

func (t *CreateTool) Name() string        { return "story_create" }
func (t *CreateTool) Description() string { return "Add a user story to the backlog as a draft" }
func (t *CreateTool) Title() string       { return "Create Story" }
func (t *CreateTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *CreateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Story text, e.g. 'user wants to reset a password'"}
		},
		"required": ["title"]
	}`)
}

func (t *CreateTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := decode(input, false)
	if err != nil {
		return nil, err
	}
	return t.store.Create(req.Title)
}

type ListResponse struct {
	Stories  []*backlog.Story `json:"stories"`
	ActiveID string           `json:"activeId,omitempty"`
}

type ListTool struct{ store *backlog.Store }

func (t *ListTool) Name() string                 { return "story_list" }
func (t *ListTool) Description() string          { return "List backlog stories in creation order" }
func (t *ListTool) Title() string                { return "List Stories" }
func (t *ListTool) Annotations() map[string]bool { return tools.ReadOnlyAnnotations() }
func (t *ListTool) Schema() json.RawMessage      { return json.RawMessage(emptySchema) }

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	stories, err := t.store.List()
	if err != nil {
		return nil, err
	}
	active, err := t.store.ActiveID()
	if err != nil {
		return nil, err
	}
	return ListResponse{Stories: stories, ActiveID: active}, nil
}

type ActivateTool struct{ store *backlog.Store }

func (t *ActivateTool) Name() string { return "story_activate" }
func (t *ActivateTool) Description() string {
	return "Make a story the active one; the previously active story returns to draft"
}
func (t *ActivateTool) Title() string                { return "Activate Story" }
func (t *ActivateTool) Annotations() map[string]bool { return tools.SafeWriteAnnotations() }
func (t *ActivateTool) Schema() json.RawMessage      { return json.RawMessage(idSchema) }

func (t *ActivateTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := decode(input, true)
	if err != nil {
		return nil, err
	}
	return t.store.Activate(req.ID)
}

type SetStatusTool struct{ store *backlog.Store }

func (t *SetStatusTool) Name() string { return "story_set_status" }
func (t *SetStatusTool) Description() string {
	return "Move a story to draft, active, review or completed"
}
func (t *SetStatusTool) Title() string                { return "Set Story Status" }
func (t *SetStatusTool) Annotations() map[string]bool { return tools.SafeWriteAnnotations() }

func (t *SetStatusTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": "Story id"},
			"status": {"type": "string", "enum": ["draft", "active", "review", "completed"]}
		},
		"required": ["id", "status"]
	}`)
}

func (t *SetStatusTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := decode(input, true)
	if err != nil {
		return nil, err
	}
	status, err := backlog.ParseStatus(req.Status)
	if err != nil {
		return nil, &tools.InvalidParamsError{Err: err}
	}
	// active goes through Activate so at most one story is active
	if status == backlog.StatusActive {
		return t.store.Activate(req.ID)
	}
	return t.store.SetStatus(req.ID, status)
}

type EditTool struct{ store *backlog.Store }

func (t *EditTool) Name() string                 { return "story_edit" }
func (t *EditTool) Description() string          { return "Change a story's text" }
func (t *EditTool) Title() string                { return "Edit Story" }
func (t *EditTool) Annotations() map[string]bool { return tools.SafeWriteAnnotations() }

func (t *EditTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": "Story id"},
			"title": {"type": "string", "description": "New story text"}
		},
		"required": ["id", "title"]
	}`)
}

func (t *EditTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := decode(input, true)
	if err != nil {
		return nil, err
	}
	return t.store.Edit(req.ID, req.Title)
}

type DeleteTool struct{ store *backlog.Store }

func (t *DeleteTool) Name() string                 { return "story_delete" }
func (t *DeleteTool) Description() string          { return "Remove a story from the backlog" }
func (t *DeleteTool) Title() string                { return "Delete Story" }
func (t *DeleteTool) Annotations() map[string]bool { return tools.DestructiveAnnotations() }
func (t *DeleteTool) Schema() json.RawMessage      { return json.RawMessage(idSchema) }

func (t *DeleteTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := decode(input, true)
	if err != nil {
		return nil, err
	}
	if err := t.store.Delete(req.ID); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": req.ID}, nil
}

// RoutesTool feeds every backlog story to the route synthesizer.
type RoutesTool struct{ store *backlog.Store }

func (t *RoutesTool) Name() string { return "story_routes" }
func (t *RoutesTool) Description() string {
	return "Render an Express routes fragment from every story in the backlog"
}
func (t *RoutesTool) Title() string                { return "Routes From Stories" }
func (t *RoutesTool) Annotations() map[string]bool { return tools.ReadOnlyAnnotations() }
func (t *RoutesTool) Schema() json.RawMessage      { return json.RawMessage(emptySchema) }

func (t *RoutesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	titles, err := t.store.Titles()
	if err != nil {
		return nil, err
	}
	return generate.SynthesizeRoutes(titles), nil
}

type addFileRequest struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

type AddFileTool struct{ store *backlog.Store }

func (t *AddFileTool) Name() string { return "story_add_file" }
func (t *AddFileTool) Description() string {
	return "Record a generated file against a story; it is deleted along with the story"
}
func (t *AddFileTool) Title() string { return "Add Story File" }
func (t *AddFileTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *AddFileTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": "Story id"},
			"path": {"type": "string", "description": "File path relative to the project, e.g. routes.js"},
			"content": {"type": "string", "description": "File content"},
			"language": {"type": "string", "description": "Language for highlighting (default javascript)"}
		},
		"required": ["id", "path"]
	}`)
}

func (t *AddFileTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req addFileRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, tools.Required("id")
	}
	return t.store.AddFile(req.ID, req.Path, req.Content, req.Language)
}

type FilesTool struct{ store *backlog.Store }

func (t *FilesTool) Name() string                 { return "story_files" }
func (t *FilesTool) Description() string          { return "List the files recorded against a story" }
func (t *FilesTool) Title() string                { return "Story Files" }
func (t *FilesTool) Annotations() map[string]bool { return tools.ReadOnlyAnnotations() }
func (t *FilesTool) Schema() json.RawMessage      { return json.RawMessage(idSchema) }

func (t *FilesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := decode(input, true)
	if err != nil {
		return nil, err
	}
	return t.store.Files(req.ID)
}
