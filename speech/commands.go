// Package speech adapts external model processes to the assistant's
// collaborator interfaces. Each adapter shells out to a configured command;
// the model processes own their weights and lazy loading, this package only
// owns the process boundary.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CommandTranscriber runs a speech-to-text command. The audio file path is
// appended as the final argument and the transcript is read from stdout.
type CommandTranscriber struct {
	Command []string
	Logger  *slog.Logger
}

func (t *CommandTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	out, err := runCommand(ctx, t.Command, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	logger(t.Logger).Info("transcription finished", "audio", audioPath)
	return strings.TrimSpace(out), nil
}

// CommandClassifier runs a sentiment command with the text as the final
// argument. Stdout must be "LABEL SCORE", e.g. "NEGATIVE 0.97".
type CommandClassifier struct {
	Command []string
	Logger  *slog.Logger
}

func (c *CommandClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	out, err := runCommand(ctx, c.Command, text)
	if err != nil {
		return "", 0, fmt.Errorf("classify sentiment: %w", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("classify sentiment: malformed output %q", strings.TrimSpace(out))
	}
	score, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("classify sentiment: bad score %q: %w", fields[1], err)
	}
	return strings.ToUpper(fields[0]), score, nil
}

// CommandSynthesizer runs a text-to-speech command with the response text
// and the output path as the final two arguments.
type CommandSynthesizer struct {
	Command []string
	Logger  *slog.Logger
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if _, err := runCommand(ctx, s.Command, text, outputPath); err != nil {
		return fmt.Errorf("synthesize to %s: %w", outputPath, err)
	}
	logger(s.Logger).Info("speech synthesized", "output", outputPath)
	return nil
}

func runCommand(ctx context.Context, command []string, extraArgs ...string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("no command configured")
	}
	args := append(append([]string{}, command[1:]...), extraArgs...)
	cmd := exec.CommandContext(ctx, command[0], args...)
	// A child process inheriting stdout must not hold the wait open past
	// the deadline.
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if err != nil {
		// The kill on context expiry surfaces as "signal: killed"; report
		// the context error instead so timeouts stay a distinct failure
		// mode for callers.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", command[0], ctxErr)
		}
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%s: %w: %s", command[0], err, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("%s: %w", command[0], err)
	}
	return string(out), nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
