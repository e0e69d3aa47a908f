package wire

import (
	"encoding/binary"
	"fmt"
)

// ============================================================================
//                              molecule 编码
// ============================================================================

// 所有长度与偏移都是 4 字节小端数。
const sizeLen = 4

func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// packBytes 编码 fixvec<byte>：元素个数 + 内容
func packBytes(v []byte) []byte {
	out := make([]byte, 0, sizeLen+len(v))
	return append(appendU32(out, uint32(len(v))), v...)
}

// packTable 编码 table 或 dynvec：总长度 + 各字段偏移 + 字段内容
//
// 两者布局相同，空 dynvec 只有 4 字节总长度。
func packTable(fields ...[]byte) []byte {
	header := sizeLen * (len(fields) + 1)
	if len(fields) == 0 {
		header = sizeLen
	}
	total := header
	for _, f := range fields {
		total += len(f)
	}

	out := make([]byte, 0, total)
	out = appendU32(out, uint32(total))
	off := header
	for _, f := range fields {
		out = appendU32(out, uint32(off))
		off += len(f)
	}
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// packUnion 编码 union：成员编号 + 成员内容
func packUnion(id uint32, item []byte) []byte {
	out := make([]byte, 0, sizeLen+len(item))
	return append(appendU32(out, id), item...)
}

// ============================================================================
//                              molecule 解码
// ============================================================================

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func readU32(data []byte) (uint32, error) {
	if len(data) < sizeLen {
		return 0, malformed("need %d bytes, have %d", sizeLen, len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}

// unpackBytes 解码 fixvec<byte>
func unpackBytes(data []byte) ([]byte, error) {
	n, err := readU32(data)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)-sizeLen) != uint64(n) {
		return nil, malformed("bytes: header %d, payload %d", n, len(data)-sizeLen)
	}
	return data[sizeLen:], nil
}

// unpackOffsets 解码 table 或 dynvec 的全部字段
func unpackOffsets(data []byte) ([][]byte, error) {
	total, err := readU32(data)
	if err != nil {
		return nil, err
	}
	if uint64(total) != uint64(len(data)) {
		return nil, malformed("total size %d, have %d", total, len(data))
	}
	if total == sizeLen {
		return nil, nil
	}

	first, err := readU32(data[sizeLen:])
	if err != nil {
		return nil, err
	}
	if first%sizeLen != 0 || first < 2*sizeLen || first > total {
		return nil, malformed("bad header size %d", first)
	}
	count := int(first/sizeLen) - 1

	offsets := make([]uint32, count+1)
	for i := 0; i < count; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[sizeLen*(i+1):])
	}
	offsets[count] = total

	fields := make([][]byte, count)
	for i := 0; i < count; i++ {
		start, end := offsets[i], offsets[i+1]
		if start > end || end > total {
			return nil, malformed("field %d offsets %d..%d", i, start, end)
		}
		fields[i] = data[start:end]
	}
	return fields, nil
}

// unpackTable 按兼容模式解码 table
//
// 对端可以追加新字段，多出的字段忽略；少于 want 个字段视为错误。
func unpackTable(data []byte, name string, want int) ([][]byte, error) {
	fields, err := unpackOffsets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(fields) < want {
		return nil, fmt.Errorf("%s: %w", name, malformed("%d fields, want %d", len(fields), want))
	}
	return fields[:want], nil
}

// unpackUnion 解码 union，返回成员编号与内容
func unpackUnion(data []byte) (uint32, []byte, error) {
	id, err := readU32(data)
	if err != nil {
		return 0, nil, err
	}
	return id, data[sizeLen:], nil
}

// unpackFixed 解码定长 array
func unpackFixed(data []byte, name string, size int) ([]byte, error) {
	if len(data) != size {
		return nil, malformed("%s: %d bytes, want %d", name, len(data), size)
	}
	return data, nil
}
