// Package protocol defines the JSON shapes exchanged between forge and the
// editor front end over JSON-RPC 2.0.
package protocol

import "encoding/json"

// Version is stamped at build time with -ldflags "-X ...protocol.Version=...".
var Version = "dev"

const (
	ServerName      = "forge"
	ProtocolVersion = "2025-06-18"

	MethodInitialize     = "initialize"
	MethodInitialized    = "notifications/initialized"
	MethodPing           = "ping"
	MethodToolsList      = "tools/list"
	MethodToolsCall      = "tools/call"
	MethodProjectChanged = "project/changed"
)

var SupportedProtocolVersions = []string{
	"2024-11-05",
	"2025-03-26",
	"2025-06-18",
}

// NegotiateVersion echoes the client's protocol version when supported and
// falls back to ProtocolVersion otherwise.
func NegotiateVersion(client string) string {
	for _, v := range SupportedProtocolVersions {
		if client == v {
			return v
		}
	}
	return ProtocolVersion
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeParams struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ClientInfo      ClientInfo `json:"clientInfo"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ServerInfo      ServerInfo             `json:"serverInfo"`
}

type Tool struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Annotations map[string]bool `json:"annotations,omitempty"`
}

type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult wraps a tool's JSON value as a single text content block.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// ErrorData is attached to every error response.
type ErrorData struct {
	Kind string `json:"kind"`
}

type FileChange struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// ProjectChangedParams is the payload of a project/changed notification.
type ProjectChangedParams struct {
	Root    string       `json:"root"`
	Changes []FileChange `json:"changes"`
}
