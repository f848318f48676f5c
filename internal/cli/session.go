package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ListSessions prints the stored session IDs.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	sessions, err := app.Client.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	fmt.Fprintln(w, "Active Sessions:")
	for _, s := range sessions {
		fmt.Fprintln(w, "- "+s)
	}
	return nil
}

// InspectSession prints a stored conversation as indented JSON.
func InspectSession(ctx context.Context, app *App, w io.Writer, sessionID string) error {
	conv, err := app.Client.Manager().Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling conversation: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes every given session and reports each outcome.
func RemoveSessions(ctx context.Context, app *App, w io.Writer, sessionIDs ...string) error {
	var errs []error
	for _, id := range sessionIDs {
		if err := app.Client.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
