// Package action performs the desktop side effects of credential
// operations: clipboard writes, keyboard typing and touch prompts.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/clock"
	"github.com/shandysiswandi/gooath/internal/pkg/config"
	"go.uber.org/atomic"
)

const (
	defaultTypeTimeout       = 2 * time.Second
	defaultTouchTimeout      = 15 * time.Second
	defaultNotificationExtra = 15 * time.Second
	codePeriod               = 30
)

// ErrNoTypingTool is returned when none of the configured typing tools is
// installed.
var ErrNoTypingTool = errors.New("action: no typing tool available")

// Notifier receives touch prompts and copy notices, usually the stream hub
// and the broker publisher.
type Notifier interface {
	Notify(n entity.Notification)
}

type Dependency struct {
	Config    config.Config
	Clock     clock.Clocker
	Notifiers []Notifier
}

type Executor struct {
	writeClipboard    func(text string) error
	typer             *typer
	notifiers         []Notifier
	clock             clock.Clocker
	touchTimeout      time.Duration
	notificationExtra time.Duration
	lastID            atomic.Uint32
}

func New(dep Dependency) *Executor {
	tools := defaultTools
	timeout := defaultTypeTimeout
	touchTimeout := defaultTouchTimeout
	extra := defaultNotificationExtra
	if dep.Config != nil {
		if names := dep.Config.GetArray("action.type_tools"); len(names) > 0 {
			tools = names
		}
		if v := dep.Config.GetMillisecond("action.type_timeout_ms"); v > 0 {
			timeout = v
		}
		if v := dep.Config.GetSecond("oath.touch_timeout_seconds"); v > 0 {
			touchTimeout = v
		}
		if v := dep.Config.GetSecond("action.notification_extra_seconds"); v > 0 {
			extra = v
		}
	}

	clk := dep.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Executor{
		writeClipboard:    clipboard.WriteAll,
		typer:             newTyper(tools, timeout),
		notifiers:         dep.Notifiers,
		clock:             clk,
		touchTimeout:      touchTimeout,
		notificationExtra: extra,
	}
}

func (e *Executor) CopyCode(ctx context.Context, code string) error {
	if clipboard.Unsupported {
		return errors.New("action: clipboard is not supported on this system")
	}
	if err := e.writeClipboard(code); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}

	slog.DebugContext(ctx, "code copied to clipboard")
	return nil
}

func (e *Executor) TypeCode(ctx context.Context, code string) error {
	return e.typer.Type(ctx, code)
}

// ShowTouchNotification asks the user to touch the device. Ids start at 1.
func (e *Executor) ShowTouchNotification(ctx context.Context, credentialName, deviceModel string) uint32 {
	if deviceModel == "" {
		deviceModel = "security key"
	}

	n := entity.Notification{
		ID:             e.lastID.Inc(),
		Kind:           entity.NotificationTouchRequired,
		Title:          "Touch your " + deviceModel,
		Body:           fmt.Sprintf("Touch the device to generate a code for %s", credentialName),
		TimeoutSeconds: int(e.touchTimeout / time.Second),
	}
	slog.InfoContext(ctx, "touch required", "notification_id", n.ID, "credential", credentialName, "device_model", deviceModel)
	e.notify(n)

	return n.ID
}

// ShowCodeNotification tells the user a code reached the clipboard. It
// stays up for the rest of the current period plus the configured extra time.
func (e *Executor) ShowCodeNotification(ctx context.Context, code, credentialName, deviceModel string) {
	remaining := codePeriod - int(e.clock.Now().Unix()%codePeriod)
	seconds := remaining + int(e.notificationExtra/time.Second)

	n := entity.Notification{
		ID:             e.lastID.Inc(),
		Kind:           entity.NotificationCodeCopied,
		Title:          credentialName,
		Body:           fmt.Sprintf("%s (copied) expires in %ds", code, seconds),
		TimeoutSeconds: seconds,
	}
	slog.InfoContext(ctx, "code copied", "notification_id", n.ID, "credential", credentialName, "device_model", deviceModel)
	e.notify(n)
}

func (e *Executor) CloseTouchNotification(ctx context.Context, id uint32) {
	if id == 0 {
		return
	}

	slog.DebugContext(ctx, "touch notification closed", "notification_id", id)
	e.notify(entity.Notification{ID: id, Kind: entity.NotificationClosed})
}

func (e *Executor) notify(n entity.Notification) {
	for _, sink := range e.notifiers {
		sink.Notify(n)
	}
}
