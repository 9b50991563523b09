// ABOUTME: Sync operations for the charm-backed content library
// ABOUTME: Status, manual sync, auto-sync toggle and wipe for the CLI
package charm

import (
	"fmt"
	"io"
)

// SyncStatus prints the server, auto-sync setting and key count.
func SyncStatus(w io.Writer, c *Client) error {
	cfg := c.Config()
	fmt.Fprintln(w, "Charm Sync Status")
	fmt.Fprintln(w, "─────────────────")
	fmt.Fprintf(w, "Server:    %s\n", cfg.Host)
	fmt.Fprintf(w, "Auto-sync: %v\n", cfg.AutoSync)

	id, err := c.ID()
	switch {
	case err != nil:
		fmt.Fprintln(w, "\nStatus: Not connected")
	case c.local:
		fmt.Fprintln(w, "\nStatus: Local library (no sync)")
	default:
		fmt.Fprintln(w, "\nStatus: Connected to Charm Cloud")
		fmt.Fprintf(w, "ID:        %s\n", id)
	}

	keys, err := c.Keys()
	if err == nil {
		fmt.Fprintf(w, "Keys:      %d\n", len(keys))
	}
	return nil
}

func SyncNow(w io.Writer, c *Client) error {
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(w, "✓ Synced")
	return nil
}

func SetAutoSync(w io.Writer, c *Client, enabled bool) error {
	if err := c.Config().SetAutoSync(enabled); err != nil {
		return fmt.Errorf("failed to save auto-sync setting: %w", err)
	}
	if enabled {
		fmt.Fprintln(w, "✓ Auto-sync enabled")
	} else {
		fmt.Fprintln(w, "✓ Auto-sync disabled")
	}
	return nil
}

// Wipe deletes the whole library. Without confirm it only prints a warning.
func Wipe(w io.Writer, c *Client, confirm bool) error {
	if !confirm {
		fmt.Fprintln(w, "WARNING: This will delete every video, document and intent!")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "To confirm, run:")
		fmt.Fprintln(w, "  salesflow sync wipe --confirm")
		return nil
	}
	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	fmt.Fprintln(w, "✓ Library wiped")
	return nil
}
