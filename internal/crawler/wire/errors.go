package wire

import "errors"

var (
	// ErrMalformed 消息格式错误
	ErrMalformed = errors.New("wire: malformed message")

	// ErrUnknownPayload discovery union 成员编号未知
	ErrUnknownPayload = errors.New("wire: unknown discovery payload")

	// ErrFrameTooShort 帧长度不足 4 字节
	ErrFrameTooShort = errors.New("wire: frame too short")

	// ErrFrameLength 帧长度前缀超过实际数据
	ErrFrameLength = errors.New("wire: frame length exceeds data")
)
