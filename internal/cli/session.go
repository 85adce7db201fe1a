package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/banktalk/banktalk/pkg/ports"
)

// ListSessions prints every stored session id.
func ListSessions(ctx context.Context, store ports.StateStore, w io.Writer) error {
	sessions, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	sort.Strings(sessions)
	fmt.Fprintln(w, "Active Sessions:")
	for _, s := range sessions {
		fmt.Fprintln(w, "- "+s)
	}
	return nil
}

// InspectSession pretty-prints the stored state of one session.
func InspectSession(ctx context.Context, store ports.StateStore, sessionID string, w io.Writer) error {
	state, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes each session, reporting per id, and returns the
// joined failures.
func RemoveSessions(ctx context.Context, store ports.StateStore, ids []string, w io.Writer) error {
	var errs []error
	for _, sessionID := range ids {
		if err := store.Delete(ctx, sessionID); err != nil {
			errs = append(errs, fmt.Errorf("error removing '%s': %w", sessionID, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", sessionID)
	}
	return errors.Join(errs...)
}
