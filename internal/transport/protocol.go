package transport

import (
	"encoding/json"
	"fmt"
)

// Frame types exchanged with the process host. Control messages share
// the byte channel with data; there is no side channel.
const (
	FrameStart  = "start"
	FrameData   = "data"
	FrameResize = "resize"
	FrameClose  = "close"
	FrameExit   = "exit"
)

// Frame is the structured envelope multiplexing all sessions over one
// connection.
type Frame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`

	// start
	Command    string            `json:"command,omitempty"`
	Args       []string          `json:"args,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`

	// data
	Data []byte `json:"data,omitempty"`

	// resize
	Cols int `json:"cols,omitempty"`
	Rows int `json:"rows,omitempty"`
}

// Encode serializes a frame for the wire.
func (f Frame) Encode() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Type, err)
	}
	return b, nil
}

// DecodeFrame parses a wire message into a frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
