// Package capture polls the system clipboard and records new text through
// the entry service.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CommandTimeout bounds one clipboard read.
const CommandTimeout = 5 * time.Second

// MaxClipboardSize caps the bytes read from the paste command.
const MaxClipboardSize = 10 << 20

var ErrNoClipboardTool = errors.New("no clipboard tool found")

// Clipboard reads the current clipboard text.
type Clipboard interface {
	Read(ctx context.Context) (string, error)
}

// WindowSource reports the foreground application and window title.
type WindowSource interface {
	Foreground(ctx context.Context) (app, title string)
}

// NoopWindowSource reports nothing.
type NoopWindowSource struct{}

func (NoopWindowSource) Foreground(context.Context) (string, string) { return "", "" }

type pasteTool struct {
	name string
	args []string
}

var pasteTools = map[string][]pasteTool{
	"darwin": {{name: "pbpaste"}},
	"linux": {
		{name: "wl-paste", args: []string{"--no-newline"}},
		{name: "xclip", args: []string{"-o", "-selection", "clipboard"}},
		{name: "xsel", args: []string{"--output", "--clipboard"}},
	},
}

// lookPath and runCommand are swapped in tests.
var (
	lookPath   = exec.LookPath
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
)

// CommandClipboard reads the clipboard through the platform paste command.
type CommandClipboard struct {
	timeout time.Duration

	once sync.Once
	tool *pasteTool
	err  error
}

func NewCommandClipboard(timeout time.Duration) *CommandClipboard {
	if timeout <= 0 {
		timeout = CommandTimeout
	}
	return &CommandClipboard{timeout: timeout}
}

func (c *CommandClipboard) resolve() (*pasteTool, error) {
	c.once.Do(func() {
		for _, t := range pasteTools[runtime.GOOS] {
			if _, err := lookPath(t.name); err == nil {
				t := t
				c.tool = &t
				return
			}
		}
		c.err = fmt.Errorf("%w for %s", ErrNoClipboardTool, runtime.GOOS)
	})
	return c.tool, c.err
}

func (c *CommandClipboard) Read(ctx context.Context) (string, error) {
	tool, err := c.resolve()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := runCommand(ctx, tool.name, tool.args...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("command %s timed out after %v", tool.name, c.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(out) == 0 {
			// empty clipboard
			return "", nil
		}
		return "", fmt.Errorf("command %s failed: %w", tool.name, err)
	}
	if len(out) > MaxClipboardSize {
		return "", fmt.Errorf("clipboard content exceeds %d bytes", MaxClipboardSize)
	}
	return string(out), nil
}
