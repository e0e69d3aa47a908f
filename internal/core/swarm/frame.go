package swarm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultMaxFrameSize 默认单帧最大长度
const DefaultMaxFrameSize = 4 << 20

// readFrame 读取一帧：4 字节大端长度 + 内容
func readFrame(r io.Reader, max int) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if int64(n) > int64(max) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, max)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeFrame 写入一帧，调用方负责串行化
func writeFrame(w io.Writer, data []byte, max int) error {
	if len(data) > max {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(data), max)
	}
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	_, err := w.Write(buf)
	return err
}
