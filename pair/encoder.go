package pair

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Blob layout, version 1. The header is fixed-width so the store's Lua
// scripts can flip lifecycle state in place:
//
//	offset  size  field
//	0       1     format version
//	1       1     status
//	2       32    refresh secret hash
//	34      8     created_at (unix seconds, big-endian)
//	42      8     rotated_at
//	50      8     revoked_at
//	58      —     variable tail: user_id (u8 len), user_agent (u16 len),
//	              network_origin (u8 len)
const (
	pairFormatVersionCurrent = 1

	headerSize = 58
)

func Encode(p *Pair) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(pairFormatVersionCurrent)
	buf.WriteByte(byte(p.Status))
	buf.Write(p.RefreshHash[:])

	if err := binary.Write(&buf, binary.BigEndian, p.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, p.RotatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, p.RevokedAt); err != nil {
		return nil, err
	}

	if len(p.UserID) > 255 {
		return nil, errors.New("userID too long")
	}
	buf.WriteByte(byte(len(p.UserID)))
	buf.WriteString(p.UserID)

	if len(p.UserAgent) > 65535 {
		return nil, errors.New("userAgent too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(p.UserAgent))); err != nil {
		return nil, err
	}
	buf.WriteString(p.UserAgent)

	if len(p.NetworkOrigin) > 255 {
		return nil, errors.New("networkOrigin too long")
	}
	buf.WriteByte(byte(len(p.NetworkOrigin)))
	buf.WriteString(p.NetworkOrigin)

	return buf.Bytes(), nil
}

func Decode(data []byte) (*Pair, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != pairFormatVersionCurrent {
		return nil, errors.New("invalid pair version")
	}

	p := &Pair{}

	status, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if status != byte(StatusActive) && status != byte(StatusRevoked) {
		return nil, errors.New("invalid pair status")
	}
	p.Status = Status(status)

	if _, err := io.ReadFull(reader, p.RefreshHash[:]); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &p.RotatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &p.RevokedAt); err != nil {
		return nil, err
	}

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	userID := make([]byte, userLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}
	p.UserID = string(userID)

	var uaLen uint16
	if err := binary.Read(reader, binary.BigEndian, &uaLen); err != nil {
		return nil, err
	}
	userAgent := make([]byte, uaLen)
	if _, err := io.ReadFull(reader, userAgent); err != nil {
		return nil, err
	}
	p.UserAgent = string(userAgent)

	originLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	origin := make([]byte, originLen)
	if _, err := io.ReadFull(reader, origin); err != nil {
		return nil, err
	}
	p.NetworkOrigin = string(origin)

	return p, nil
}
