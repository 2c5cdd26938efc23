// State dump and file-driven commands for GUI automation.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

// ViewState is one view inside a state dump.
type ViewState struct {
	State    string     `json:"state"`
	Tier     string     `json:"tier"`
	Asset    string     `json:"asset,omitempty"`
	Vertices int        `json:"vertices"`
	Progress int        `json:"progress"`
	Camera   [3]float32 `json:"camera"`
	Target   [3]float32 `json:"target"`
	Failures []string   `json:"failures,omitempty"`
}

// GUIState is the JSON written by dumpState.
type GUIState struct {
	Timestamp string               `json:"timestamp"`
	ModelDir  string               `json:"modelDir"`
	Case      string               `json:"case"`
	Index     int                  `json:"index"`
	Cases     []string             `json:"cases"`
	Loaded    bool                 `json:"loaded"`
	Views     map[string]ViewState `json:"views"`
}

func (ws *Workstation) state() GUIState {
	reg := ws.app.Registry()
	st := GUIState{
		Timestamp: time.Now().Format(time.RFC3339),
		ModelDir:  ws.app.Assets().Root(),
		Case:      reg.CaseID(),
		Index:     reg.Index(),
		Cases:     reg.Cases(),
		Loaded:    reg.CaseLoaded(),
		Views:     make(map[string]ViewState, viewer.Count),
	}
	for _, s := range reg.Sessions() {
		res := s.Result()
		vs := ViewState{
			State:    s.State().String(),
			Tier:     res.Tier.String(),
			Progress: s.Tracker().Progress(),
			Camera:   s.Camera().Position.Array(),
			Target:   s.LookAt().Array(),
		}
		if a := s.Asset(); a != nil {
			vs.Asset = a.Name
			vs.Vertices = a.VertexCount()
		}
		for _, err := range res.Failures {
			vs.Failures = append(vs.Failures, err.Error())
		}
		st.Views[s.Viewer().Tag()] = vs
	}
	return st
}

// dumpState writes state.json into the snapshot directory.
func (ws *Workstation) dumpState() {
	data, err := json.MarshalIndent(ws.state(), "", "  ")
	if err != nil {
		ws.showNotice(fmt.Sprintf("State dump failed: %v", err))
		return
	}

	dir := ws.app.Config().Snapshot.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		ws.showNotice(fmt.Sprintf("State dump failed: %v", err))
		return
	}
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		ws.showNotice(fmt.Sprintf("State dump failed: %v", err))
		return
	}
	ws.showNotice("State saved: state.json")
	logger.Info("state saved", zap.String("path", path))
}

// checkAndExecuteCommand polls command.json in the snapshot directory.
// Commands are single-shot: the file is removed before it runs.
func (ws *Workstation) checkAndExecuteCommand() {
	path := filepath.Join(ws.app.Config().Snapshot.Dir, "command.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	os.Remove(path)

	var cmd viewer.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		logger.Warn("invalid command file", zap.Error(err))
		return
	}
	if cmd.Type == "dump_state" {
		ws.dumpState()
		return
	}
	if err := ws.app.Registry().Submit(cmd); err != nil {
		ws.showNotice(fmt.Sprintf("Command %s failed: %v", cmd.Type, err))
		return
	}
	logger.Info("command queued", zap.String("type", string(cmd.Type)))
}
