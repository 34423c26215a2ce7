package utils

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"
)

func TestStreamWriterSendsNineBytes(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	w := NewStreamWriter(client, "pipe")
	defer w.Close()

	frame := EncodeFrame(Snapshot{250, 125, 0, 10, 250, 0, 250, 250})
	errc := make(chan error, 1)
	go func() { errc <- w.WriteFrame(context.Background(), frame) }()

	buf := make([]byte, FrameSize)
	if _, err := io.ReadFull(server, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != (Snapshot{250, 125, 0, 10, 250, 0, 250, 250}) {
		t.Errorf("received %v", got)
	}
}

func TestStreamWriterHonoursCanceledContext(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	w := NewStreamWriter(client, "pipe")
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.WriteFrame(ctx, Frame{}); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteFrame = %v, want context.Canceled", err)
	}
}

func TestStreamWriterStalledPeerTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	w := NewStreamWriter(client, "pipe")
	defer w.Close()
	w.timeout = 50 * time.Millisecond

	errc := make(chan error, 1)
	go func() { errc <- w.WriteFrame(context.Background(), Frame{}) }()

	select {
	case err := <-errc:
		if !errors.Is(err, os.ErrDeadlineExceeded) {
			t.Errorf("WriteFrame = %v, want os.ErrDeadlineExceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WriteFrame still blocked on a peer that never reads")
	}
}

func TestStreamWriterHonoursContextDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	w := NewStreamWriter(client, "pipe")
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- w.WriteFrame(ctx, Frame{}) }()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("WriteFrame succeeded without a reader")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WriteFrame ignored the context deadline")
	}
}

func TestStreamWriterCancelUnblocksWrite(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	w := NewStreamWriter(client, "pipe")
	defer w.Close()
	w.timeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.WriteFrame(ctx, Frame{}) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WriteFrame = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not unblock WriteFrame")
	}
}

// blockingStream has no write deadlines; Write blocks until Close.
type blockingStream struct {
	closed chan struct{}
}

func (s *blockingStream) Read(p []byte) (int, error) { return 0, io.EOF }

func (s *blockingStream) Write(p []byte) (int, error) {
	<-s.closed
	return 0, io.ErrClosedPipe
}

func (s *blockingStream) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func TestStreamWriterCancelClosesStreamWithoutDeadlines(t *testing.T) {
	s := &blockingStream{closed: make(chan struct{})}
	w := NewStreamWriter(s, "serial")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.WriteFrame(ctx, Frame{}) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WriteFrame = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not unblock WriteFrame")
	}
}

func TestOpenLinkSocket(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, FrameSize)
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if _, err := io.ReadFull(conn, buf); err == nil {
			accepted <- buf
		}
	}()

	cfg := getDefaultConfig().Link
	cfg.Port = "socket://" + ln.Addr().String()
	w, err := OpenLink(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenLink: %v", err)
	}
	defer w.Close()

	frame := EncodeFrame(NewChannelState(DefaultLimits()).Snapshot())
	if err := w.WriteFrame(context.Background(), frame); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	select {
	case got := <-accepted:
		if Frame(got) != frame {
			t.Errorf("server got %v, want %v", got, frame.Bytes())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive a frame")
	}
}

func TestOpenLinkFailuresAreLinkUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ports := []string{
		"socket://" + addr,
		"/dev/joylink-test-no-such-port",
	}
	for _, port := range ports {
		cfg := getDefaultConfig().Link
		cfg.Port = port
		_, err := OpenLink(context.Background(), cfg)
		if !errors.Is(err, ErrLinkUnavailable) {
			t.Errorf("OpenLink(%q) = %v, want ErrLinkUnavailable", port, err)
		}
	}
}
