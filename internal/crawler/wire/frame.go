package wire

import (
	"encoding/binary"
	"fmt"
)

// FrameHeaderSize 长度前缀字节数
const FrameHeaderSize = 4

// WrapFrame 在消息外添加 4 字节大端长度前缀
func WrapFrame(payload []byte) []byte {
	out := make([]byte, FrameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[FrameHeaderSize:], payload)
	return out
}

// UnwrapFrame 取出第一个完整的帧，帧之后的字节忽略
func UnwrapFrame(data []byte) ([]byte, error) {
	if len(data) < FrameHeaderSize {
		return nil, ErrFrameTooShort
	}
	n := binary.BigEndian.Uint32(data)
	rest := data[FrameHeaderSize:]
	if uint64(n) > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: header %d, payload %d", ErrFrameLength, n, len(rest))
	}
	return rest[:n], nil
}
