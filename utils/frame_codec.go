package utils

import (
	"fmt"

	"go.einride.tech/can"
)

const (
	// SyncByte trails every frame. It lies outside [MinPPM, MaxPPM] so a
	// receiver can resynchronize on it.
	SyncByte  byte = 0xFE
	FrameSize      = NumChannels + 1
)

// Frame is the 9-octet wire message:
// roll, pitch, throttle, yaw, aux1, aux2, aux3, aux4, 0xFE.
type Frame [FrameSize]byte

// EncodeFrame packs a snapshot. Values outside the wire range are clamped, so
// the result is always a valid frame.
func EncodeFrame(v Snapshot) Frame {
	var f Frame
	for i := 0; i < NumChannels; i++ {
		f[i] = clampByte(v[i])
	}
	f[NumChannels] = SyncByte
	return f
}

// DecodeFrame reverses EncodeFrame. It is used by tests and link monitors.
func DecodeFrame(data []byte) (Snapshot, error) {
	var v Snapshot
	if len(data) != FrameSize {
		return v, fmt.Errorf("frame expects %d bytes, got %d", FrameSize, len(data))
	}
	if data[NumChannels] != SyncByte {
		return v, fmt.Errorf("frame sync byte is 0x%02X, want 0x%02X", data[NumChannels], SyncByte)
	}
	for i := 0; i < NumChannels; i++ {
		if int(data[i]) > MaxPPM {
			return v, fmt.Errorf("frame %s value %d exceeds %d", Channel(i), data[i], MaxPPM)
		}
		v[i] = int(data[i])
	}
	return v, nil
}

func (f Frame) Bytes() []byte {
	return f[:]
}

// Channels returns the eight channel octets without the sync trailer.
func (f Frame) Channels() []byte {
	return f[:NumChannels]
}

// EncodeCANFrame carries the channel octets as one classic CAN frame. CAN
// delimits frames itself, so the sync byte is dropped.
func EncodeCANFrame(id uint32, f Frame) can.Frame {
	var cf can.Frame
	cf.ID = id
	cf.Length = NumChannels
	copy(cf.Data[:], f.Channels())
	return cf
}
