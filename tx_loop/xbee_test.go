package main

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"
)

func TestSetDestinationNode(t *testing.T) {
	var out bytes.Buffer
	var waits []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	if err := SetDestinationNode(context.Background(), &out, "XbeeThesis", sleep); err != nil {
		t.Fatalf("SetDestinationNode: %v", err)
	}
	if got, want := out.String(), "+++ATDNXbeeThesis\r"; got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
	if want := []time.Duration{time.Second, 500 * time.Millisecond}; !reflect.DeepEqual(waits, want) {
		t.Errorf("waits = %v, want %v", waits, want)
	}
}

func TestSetDestinationNodeRejectsBadIDs(t *testing.T) {
	sleep := func(context.Context, time.Duration) error { return nil }
	for _, node := range []string{"", "abc\rATCN", "this-node-name-is-far-too-long"} {
		var out bytes.Buffer
		if err := SetDestinationNode(context.Background(), &out, node, sleep); err == nil {
			t.Errorf("node %q accepted", node)
		}
		if out.Len() != 0 {
			t.Errorf("node %q: wrote %q before validation", node, out.String())
		}
	}
}

func TestSetDestinationNodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := SetDestinationNode(ctx, &out, "XbeeThesis", sleepContext)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if out.String() != "+++" {
		t.Errorf("wrote %q, want only the escape sequence", out.String())
	}
}
