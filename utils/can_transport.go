package utils

import (
	"context"
	"fmt"
	"net"

	"go.einride.tech/can/pkg/socketcan"
)

// SocketCANWriter mirrors the channel frame onto a CAN bus so the same
// stick input can drive a vehicle controller on vcan0/can0.
type SocketCANWriter struct {
	conn net.Conn
	tx   *socketcan.Transmitter
	id   uint32
}

func NewSocketCANWriter(ctx context.Context, iface string, id uint32) (*SocketCANWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCANWriter{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
		id:   id,
	}, nil
}

func (w *SocketCANWriter) WriteFrame(ctx context.Context, frame Frame) error {
	return w.tx.TransmitFrame(ctx, EncodeCANFrame(w.id, frame))
}

func (w *SocketCANWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}
