package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banktalk/banktalk"
	"github.com/banktalk/banktalk/internal/presentation/tui"
	"github.com/banktalk/banktalk/pkg/domain"
)

// Chatter is the part of the assistant the REPL talks to.
type Chatter interface {
	Chat(ctx context.Context, sessionID, message string) (*banktalk.Response, error)
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	SessionID string
	In        io.Reader
	Out       io.Writer
	Render    tui.Renderer
	// Quiet suppresses the banner and system messages.
	Quiet bool
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}

// RunChat reads one message per line and prints each reply until the user
// types exit or quit, the input ends, or ctx is cancelled.
func RunChat(ctx context.Context, chatter Chatter, opts ChatOptions) error {
	render := opts.Render
	if render == nil {
		render = tui.Plain
	}
	out := opts.Out

	if !opts.Quiet {
		tui.PrintBanner(out, banktalk.Version)
		printSystemMessage(out, "Session '%s' active.", opts.SessionID)
	}

	scanner := bufio.NewScanner(cancelableReader{r: opts.In, done: ctx.Done()})
	for {
		fmt.Fprint(out, tui.Prompt(out))
		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil || isInterrupted(err) {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			if !opts.Quiet {
				printSystemMessage(out, "Goodbye.")
			}
			return nil
		}

		resp, err := chatter.Chat(ctx, opts.SessionID, line)
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			if isInputError(err) {
				printSystemMessage(out, "%v", err)
				continue
			}
			return err
		}

		text, err := render(resp.Reply)
		if err != nil {
			text = resp.Reply + "\n"
		}
		fmt.Fprint(out, text)
		if len(resp.Sources) > 0 {
			refs := make([]string, len(resp.Sources))
			for i, src := range resp.Sources {
				refs[i] = src.String()
			}
			fmt.Fprintf(out, "Sources: %s\n", strings.Join(refs, ", "))
		}
	}
}

func isInputError(err error) bool {
	return errors.Is(err, domain.ErrEmptyMessage) ||
		errors.Is(err, domain.ErrInputTooLarge) ||
		errors.Is(err, domain.ErrInvalidUTF8)
}
