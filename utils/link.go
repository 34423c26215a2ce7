package utils

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	socketScheme = "socket://"
	canScheme    = "can://"

	defaultWriteTimeout = time.Second
)

// FrameWriter sends frames to the receiver. The transmitter owns it
// exclusively for the life of the process.
type FrameWriter interface {
	WriteFrame(ctx context.Context, frame Frame) error
	Close() error
}

// StreamWriter writes frames to a byte stream: a serial port or a TCP serial
// bridge. Raw exposes the stream for out-of-band command sequences.
type StreamWriter struct {
	rwc     io.ReadWriteCloser
	name    string
	timeout time.Duration
}

// writeDeadliner is implemented by net.Conn.
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

func NewStreamWriter(rwc io.ReadWriteCloser, name string) *StreamWriter {
	return &StreamWriter{rwc: rwc, name: name, timeout: defaultWriteTimeout}
}

// WriteFrame writes one frame. On a stream with write deadlines the write
// gives up after the writer timeout or the ctx deadline, whichever is first,
// and as soon as ctx is canceled. Any other stream is closed when ctx is
// canceled mid-write.
func (w *StreamWriter) WriteFrame(ctx context.Context, frame Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if d, ok := w.rwc.(writeDeadliner); ok {
		deadline := time.Now().Add(w.timeout)
		if cd, ok := ctx.Deadline(); ok && cd.Before(deadline) {
			deadline = cd
		}
		if err := d.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("write %s: set deadline: %w", w.name, err)
		}
		stop := context.AfterFunc(ctx, func() { _ = d.SetWriteDeadline(time.Unix(1, 0)) })
		defer stop()
	} else {
		stop := context.AfterFunc(ctx, func() { _ = w.rwc.Close() })
		defer stop()
	}

	n, err := w.rwc.Write(frame.Bytes())
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("write %s: %w", w.name, cerr)
		}
		return fmt.Errorf("write %s: %w", w.name, err)
	}
	if n != FrameSize {
		return fmt.Errorf("write %s: short write %d/%d", w.name, n, FrameSize)
	}
	return nil
}

// Raw returns the underlying stream.
func (w *StreamWriter) Raw() io.ReadWriter {
	return w.rwc
}

func (w *StreamWriter) String() string {
	return w.name
}

func (w *StreamWriter) Close() error {
	if w.rwc != nil {
		return w.rwc.Close()
	}
	return nil
}

// OpenLink opens the endpoint named by cfg.Port:
//
//	socket://host:port   TCP serial bridge
//	can://iface          SocketCAN interface, channels sent as CAN ID cfg.CANID
//	anything else        serial device opened at cfg.BaudRate, 8N1
//
// Failures wrap ErrLinkUnavailable.
func OpenLink(ctx context.Context, cfg LinkConfig) (FrameWriter, error) {
	switch {
	case strings.HasPrefix(cfg.Port, socketScheme):
		addr := strings.TrimPrefix(cfg.Port, socketScheme)
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: dial %s: %v", ErrLinkUnavailable, addr, err)
		}
		return NewStreamWriter(conn, cfg.Port), nil

	case strings.HasPrefix(cfg.Port, canScheme):
		iface := strings.TrimPrefix(cfg.Port, canScheme)
		w, err := NewSocketCANWriter(ctx, iface, cfg.CANID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLinkUnavailable, err)
		}
		return w, nil

	default:
		mode := &serial.Mode{
			BaudRate: cfg.BaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
		port, err := serial.Open(cfg.Port, mode)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrLinkUnavailable, cfg.Port, err)
		}
		return NewStreamWriter(port, cfg.Port), nil
	}
}
