package types

import "github.com/DoyleJ11/toppan-client/internal/view"

// ViewerMessage is what a browser viewer sends over /ws.
type ViewerMessage struct {
	Type  string            `json:"type"` // "command" | "resize"
	Name  string            `json:"name,omitempty"`
	Form  map[string]string `json:"form,omitempty"`
	Width float64           `json:"width,omitempty"`
}

// ViewerUpdate is what the client pushes to a browser viewer.
type ViewerUpdate struct {
	Type  string      `json:"type"` // "frame" | "result" | "error"
	Frame *view.Frame `json:"frame,omitempty"`
	Name  string      `json:"name,omitempty"`
	OK    bool        `json:"ok,omitempty"`
	Error string      `json:"error,omitempty"`
}

const (
	ViewerCommand = "command"
	ViewerResize  = "resize"

	UpdateFrame  = "frame"
	UpdateResult = "result"
	UpdateError  = "error"
)
