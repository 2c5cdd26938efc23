package viewer

import "errors"

// ErrQueueFull is returned when the command queue cannot take more work.
var ErrQueueFull = errors.New("command queue full")

// ErrUnknownCommand is returned for an unrecognized command type.
var ErrUnknownCommand = errors.New("unknown command")

// EventType names an outgoing notification.
type EventType string

const (
	EventCaseLoaded EventType = "case_loaded"
	EventLoading    EventType = "loading"
	EventSnapshot   EventType = "snapshot"
	EventError      EventType = "error"
)

// ViewerStatus is one view's outcome inside a case_loaded event.
type ViewerStatus struct {
	State    string `json:"state"`
	Tier     string `json:"tier"`
	Asset    string `json:"asset"`
	Failures int    `json:"failures,omitempty"`
}

// Event is published to listeners on the loop goroutine.
type Event struct {
	Type     EventType               `json:"type"`
	Case     string                  `json:"case,omitempty"`
	Index    int                     `json:"index"`
	Viewer   string                  `json:"viewer,omitempty"`
	State    string                  `json:"state,omitempty"`
	Progress int                     `json:"progress"`
	Viewers  map[string]ViewerStatus `json:"viewers,omitempty"`
	Files    []string                `json:"files,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Listener receives events. It runs on the loop goroutine and must not block.
type Listener func(Event)

// CommandType names an incoming host request.
type CommandType string

const (
	CommandLoadCase CommandType = "load_case"
	CommandNext     CommandType = "next"
	CommandPrev     CommandType = "prev"
	CommandResize   CommandType = "resize"
	CommandSnapshot CommandType = "snapshot"
)

// Command is a request queued to the loop goroutine.
type Command struct {
	Type   CommandType `json:"type"`
	Index  int         `json:"index,omitempty"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
}

// progressMsg carries byte progress from a worker.
type progressMsg struct {
	viewer     ViewerType
	generation uint64
	loaded     int64
	total      int64
}
