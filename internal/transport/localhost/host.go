// Package localhost provides an in-process process host: a
// transport.Dialer that spawns real shells over PTYs instead of
// dialing an external host. It lets the subsystem run standalone in
// development while the production path talks to a remote host.
package localhost

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/shared/paths"
	"github.com/glyphide/termcore/internal/transport"
)

// Host implements transport.Dialer. Each Dial yields a fresh logical
// connection with its own set of shell processes.
type Host struct {
	logger *zap.Logger
}

// New creates a local process host.
func New(logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{logger: logger}
}

// Dial returns a connection whose Send interprets host frames and
// spawns, feeds, resizes, or kills shell processes accordingly.
func (h *Host) Dial(ctx context.Context, handler transport.Handler) (transport.Conn, error) {
	return &hostConn{
		handler: handler,
		shells:  make(map[string]*shell),
		logger:  h.logger,
	}, nil
}

type hostConn struct {
	mu      sync.Mutex
	handler transport.Handler
	shells  map[string]*shell
	closed  bool
	logger  *zap.Logger
}

type shell struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	mu     sync.Mutex
	closed bool
}

func (c *hostConn) Send(data []byte) error {
	frame, err := transport.DecodeFrame(data)
	if err != nil {
		return err
	}

	switch frame.Type {
	case transport.FrameStart:
		return c.start(frame)
	case transport.FrameData:
		return c.write(frame)
	case transport.FrameResize:
		return c.resize(frame)
	case transport.FrameClose:
		c.kill(frame.SessionID)
		return nil
	default:
		return fmt.Errorf("unknown frame type: %s", frame.Type)
	}
}

func (c *hostConn) start(frame transport.Frame) error {
	command := frame.Command
	if command == "" {
		command = os.Getenv("SHELL")
		if command == "" {
			command = "/bin/bash"
		}
	}
	workingDir := paths.EnsureDir(paths.ExpandWorkingDir(frame.WorkingDir))
	cols, rows := frame.Cols, frame.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	cmd := exec.Command(command, frame.Args...)
	cmd.Dir = workingDir
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")
	for key, value := range frame.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	sh := &shell{cmd: cmd, ptmx: ptmx}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sh.close()
		return fmt.Errorf("host connection closed")
	}
	if old, ok := c.shells[frame.SessionID]; ok {
		old.close()
	}
	c.shells[frame.SessionID] = sh
	c.mu.Unlock()

	go c.readOutput(frame.SessionID, sh)
	go c.monitorProcess(frame.SessionID, sh)

	c.logger.Debug("shell started",
		zap.String("session_id", frame.SessionID),
		zap.String("command", command),
	)
	return nil
}

// readOutput forwards PTY bytes to the handler as data frames.
func (c *hostConn) readOutput(sessionID string, sh *shell) {
	buf := make([]byte, 4096)
	for {
		n, err := sh.ptmx.Read(buf)
		if n > 0 {
			out, encErr := (transport.Frame{
				Type:      transport.FrameData,
				SessionID: sessionID,
				Data:      append([]byte(nil), buf[:n]...),
			}).Encode()
			if encErr == nil {
				c.handler.HandleMessage(out)
			}
		}
		if err != nil {
			if err != io.EOF {
				c.logger.Debug("pty read ended", zap.String("session_id", sessionID), zap.Error(err))
			}
			return
		}
	}
}

// monitorProcess reports shell exit to the handler as an exit frame.
func (c *hostConn) monitorProcess(sessionID string, sh *shell) {
	sh.cmd.Wait()
	sh.close()

	c.mu.Lock()
	if c.shells[sessionID] == sh {
		delete(c.shells, sessionID)
	}
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	out, err := (transport.Frame{Type: transport.FrameExit, SessionID: sessionID}).Encode()
	if err == nil {
		c.handler.HandleMessage(out)
	}
}

func (c *hostConn) write(frame transport.Frame) error {
	sh, ok := c.get(frame.SessionID)
	if !ok {
		return fmt.Errorf("no shell for session %s", frame.SessionID)
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.closed {
		return fmt.Errorf("shell closed for session %s", frame.SessionID)
	}
	_, err := sh.ptmx.Write(frame.Data)
	return err
}

func (c *hostConn) resize(frame transport.Frame) error {
	sh, ok := c.get(frame.SessionID)
	if !ok {
		// Resize for an unknown session is not an error.
		return nil
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.closed {
		return nil
	}
	return pty.Setsize(sh.ptmx, &pty.Winsize{
		Rows: uint16(frame.Rows),
		Cols: uint16(frame.Cols),
	})
}

func (c *hostConn) kill(sessionID string) {
	c.mu.Lock()
	sh, ok := c.shells[sessionID]
	delete(c.shells, sessionID)
	c.mu.Unlock()
	if ok {
		sh.close()
	}
}

func (c *hostConn) get(sessionID string) (*shell, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sh, ok := c.shells[sessionID]
	return sh, ok
}

// Close tears down every shell owned by this connection.
func (c *hostConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	shells := make([]*shell, 0, len(c.shells))
	for _, sh := range c.shells {
		shells = append(shells, sh)
	}
	c.shells = make(map[string]*shell)
	c.mu.Unlock()

	for _, sh := range shells {
		sh.close()
	}
	return nil
}

func (s *shell) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.ptmx.Close()
}
