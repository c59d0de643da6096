package compress

import "encoding/binary"

const (
	// FrameHeaderSize is the big-endian length prefix in front of every compressed frame.
	FrameHeaderSize = 4
	// MaxFrameSize bounds the declared length of a compressed frame.
	MaxFrameSize = 256 * 1024 * 1024
)

// AppendFrame compresses src with c and appends [len u32 BE][compressed] to dst.
func AppendFrame(dst []byte, c Codec, src []byte) ([]byte, error) {
	compressed, err := c.Compress(src)
	if err != nil {
		return dst, err
	}
	if len(compressed) > MaxFrameSize {
		return dst, &FrameError{Kind: FrameTooLarge, Want: MaxFrameSize, Have: len(compressed), Err: ErrFrameTooBig}
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(compressed))) //nolint:gosec
	return append(dst, compressed...), nil
}
