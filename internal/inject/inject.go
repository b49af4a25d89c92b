package inject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/voxhold/voxhold/internal/config"
)

// ErrInject marks a failed clipboard write or paste keystroke. Callers log it
// and move on; injection failure never blocks the return to idle.
var ErrInject = errors.New("text injection failed")

// Injector places transcribed text at the cursor position.
type Injector interface {
	Inject(ctx context.Context, text string) error
}

// ExecInjector writes text to the configured copy command's stdin (pbcopy,
// wl-copy, xclip) and then runs the paste command, which is expected to
// synthesize the platform paste keystroke (osascript, wtype, xdotool).
type ExecInjector struct {
	copyArgs  []string
	pasteArgs []string
	settle    time.Duration
	log       *slog.Logger

	// run is swapped out in tests.
	run func(ctx context.Context, stdin string, args []string) error
}

func NewExecInjector(cfg config.InjectConfig, log *slog.Logger) (*ExecInjector, error) {
	parser := shellwords.NewParser()
	copyArgs, err := parser.Parse(cfg.CopyCommand)
	if err != nil {
		return nil, fmt.Errorf("parse copy command: %w", err)
	}
	if len(copyArgs) == 0 {
		return nil, errors.New("copy command is empty")
	}
	var pasteArgs []string
	if strings.TrimSpace(cfg.PasteCommand) != "" {
		pasteArgs, err = parser.Parse(cfg.PasteCommand)
		if err != nil {
			return nil, fmt.Errorf("parse paste command: %w", err)
		}
	}
	return &ExecInjector{
		copyArgs:  copyArgs,
		pasteArgs: pasteArgs,
		settle:    time.Duration(cfg.SettleMS) * time.Millisecond,
		log:       log.With(slog.String("component", "inject")),
		run:       runCommand,
	}, nil
}

func (i *ExecInjector) Inject(ctx context.Context, text string) error {
	if i.settle > 0 {
		select {
		case <-time.After(i.settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := i.run(ctx, text, i.copyArgs); err != nil {
		return fmt.Errorf("%w: copy: %v", ErrInject, err)
	}
	if len(i.pasteArgs) == 0 {
		i.log.Info("text copied to clipboard, no paste command configured")
		return nil
	}
	if err := i.run(ctx, "", i.pasteArgs); err != nil {
		return fmt.Errorf("%w: paste: %v", ErrInject, err)
	}
	return nil
}

func runCommand(ctx context.Context, stdin string, args []string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", args[0], err, stderr.String())
	}
	return nil
}
