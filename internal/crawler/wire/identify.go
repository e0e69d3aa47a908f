package wire

import (
	"encoding/binary"
	"fmt"
)

// FlagFullNode 全节点能力位
//
// CKB 没有文档说明该位，沿用上游节点实际发送的值。
const FlagFullNode uint64 = 0b10000

// Identify 身份载荷
//
//	table Identify { flag: Uint64, name: Bytes, client_version: Bytes }
type Identify struct {
	Flag          uint64
	Name          string
	ClientVersion string
}

// IsFull 是否设置了全节点能力位
func (i *Identify) IsFull() bool {
	return i.Flag&FlagFullNode != 0
}

// Marshal 编码身份载荷
func (i *Identify) Marshal() []byte {
	return packTable(
		binary.LittleEndian.AppendUint64(nil, i.Flag),
		packBytes([]byte(i.Name)),
		packBytes([]byte(i.ClientVersion)),
	)
}

// DecodeIdentify 解码身份载荷
func DecodeIdentify(data []byte) (*Identify, error) {
	f, err := unpackTable(data, "identify", 3)
	if err != nil {
		return nil, err
	}
	flag, err := unpackFixed(f[0], "flag", 8)
	if err != nil {
		return nil, err
	}
	name, err := unpackBytes(f[1])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	version, err := unpackBytes(f[2])
	if err != nil {
		return nil, fmt.Errorf("client_version: %w", err)
	}
	return &Identify{
		Flag:          binary.LittleEndian.Uint64(flag),
		Name:          string(name),
		ClientVersion: string(version),
	}, nil
}

// IdentifyMessage identify 通道消息
//
//	table IdentifyMessage { listen_addrs: AddressVec, observed_addr: Address, identify: Bytes }
//	table Address { bytes: Bytes }
type IdentifyMessage struct {
	ListenAddrs  [][]byte
	ObservedAddr []byte

	// Identify 编码后的 Identify
	Identify []byte
}

func packAddress(addr []byte) []byte {
	return packTable(packBytes(addr))
}

func unpackAddress(data []byte) ([]byte, error) {
	f, err := unpackTable(data, "address", 1)
	if err != nil {
		return nil, err
	}
	return unpackBytes(f[0])
}

// Marshal 编码 identify 消息
func (m *IdentifyMessage) Marshal() []byte {
	addrs := make([][]byte, len(m.ListenAddrs))
	for i, a := range m.ListenAddrs {
		addrs[i] = packAddress(a)
	}
	return packTable(
		packTable(addrs...),
		packAddress(m.ObservedAddr),
		packBytes(m.Identify),
	)
}

// DecodeIdentifyMessage 解码 identify 消息
func DecodeIdentifyMessage(data []byte) (*IdentifyMessage, error) {
	f, err := unpackTable(data, "identify message", 3)
	if err != nil {
		return nil, err
	}

	items, err := unpackOffsets(f[0])
	if err != nil {
		return nil, fmt.Errorf("listen_addrs: %w", err)
	}
	msg := &IdentifyMessage{}
	for _, item := range items {
		a, err := unpackAddress(item)
		if err != nil {
			return nil, fmt.Errorf("listen_addrs: %w", err)
		}
		msg.ListenAddrs = append(msg.ListenAddrs, a)
	}

	if msg.ObservedAddr, err = unpackAddress(f[1]); err != nil {
		return nil, fmt.Errorf("observed_addr: %w", err)
	}
	if msg.Identify, err = unpackBytes(f[2]); err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}
	return msg, nil
}

// ParseIdentify 解码 identify 消息并取出身份载荷
func ParseIdentify(data []byte) (*Identify, error) {
	msg, err := DecodeIdentifyMessage(data)
	if err != nil {
		return nil, err
	}
	return DecodeIdentify(msg.Identify)
}
