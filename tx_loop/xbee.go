package main

import (
	"context"
	"fmt"
	"io"
	"time"
)

// XBee AT command mode timing: the radio needs one second of silence
// around the +++ escape before it accepts AT commands.
const (
	// commandModeGuard is the wait after +++ and before ATDN.
	commandModeGuard = 1 * time.Second
	// commandSettle is the wait after ATDN, before the first frame.
	commandSettle = 500 * time.Millisecond
	maxNodeIDLen  = 20
)

// SetDestinationNode points a transparent-mode XBee at the radio whose node
// identifier is node. The radio leaves command mode on its own after ATDN
// succeeds.
func SetDestinationNode(ctx context.Context, w io.Writer, node string,
	sleep func(context.Context, time.Duration) error) error {
	if err := validateNodeID(node); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "+++"); err != nil {
		return fmt.Errorf("enter command mode: %w", err)
	}
	if err := sleep(ctx, commandModeGuard); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "ATDN"+node+"\r"); err != nil {
		return fmt.Errorf("write ATDN: %w", err)
	}
	return sleep(ctx, commandSettle)
}

func validateNodeID(node string) error {
	if node == "" || len(node) > maxNodeIDLen {
		return fmt.Errorf("node identifier %q must be 1-%d characters", node, maxNodeIDLen)
	}
	for _, r := range node {
		if r < 0x20 || r > 0x7E {
			return fmt.Errorf("node identifier %q must be printable ASCII", node)
		}
	}
	return nil
}
