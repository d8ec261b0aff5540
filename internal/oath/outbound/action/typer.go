package action

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var defaultTools = []string{"wtype", "xdotool", "ydotool"}

// typer sends keystrokes through the first installed tool.
type typer struct {
	tools    []string
	timeout  time.Duration
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, path string, args ...string) error
}

func newTyper(tools []string, timeout time.Duration) *typer {
	return &typer{
		tools:    tools,
		timeout:  timeout,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func typeArgs(tool, text string) []string {
	switch tool {
	case "xdotool":
		return []string{"type", "--clearmodifiers", "--", text}
	case "ydotool":
		return []string{"type", "--", text}
	default:
		return []string{"--", text}
	}
}

func (t *typer) Type(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	for _, tool := range t.tools {
		path, err := t.lookPath(tool)
		if err != nil {
			continue
		}
		if err := t.run(ctx, path, typeArgs(tool, text)...); err != nil {
			return fmt.Errorf("type with %s: %w", tool, err)
		}
		return nil
	}

	return fmt.Errorf("%w: tried %s", ErrNoTypingTool, strings.Join(t.tools, ", "))
}

func runCommand(ctx context.Context, path string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
