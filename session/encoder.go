package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const tokenFormatVersionV1 = 1

// Encode serializes a [Token] record value. The bearer string is the key
// and is deliberately absent from the value.
func Encode(t *Token) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(tokenFormatVersionV1)

	if len(t.UserID) > 255 {
		return nil, errors.New("userID too long")
	}
	buf.WriteByte(byte(len(t.UserID)))
	buf.WriteString(t.UserID)

	if len(t.UserAgent) > 65535 {
		return nil, errors.New("user agent too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(t.UserAgent))); err != nil {
		return nil, err
	}
	buf.WriteString(t.UserAgent)

	if len(t.IPAddress) > 255 {
		return nil, errors.New("ip address too long")
	}
	buf.WriteByte(byte(len(t.IPAddress)))
	buf.WriteString(t.IPAddress)

	if t.Remembered {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	if err := binary.Write(&buf, binary.BigEndian, t.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, t.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a record value produced by [Encode]. The caller fills in
// the Token string from the key it looked up.
func Decode(data []byte) (*Token, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tokenFormatVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	t := &Token{}

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	userID := make([]byte, userLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}
	t.UserID = string(userID)

	var uaLen uint16
	if err := binary.Read(reader, binary.BigEndian, &uaLen); err != nil {
		return nil, err
	}
	userAgent := make([]byte, uaLen)
	if _, err := io.ReadFull(reader, userAgent); err != nil {
		return nil, err
	}
	t.UserAgent = string(userAgent)

	ipLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	ipAddress := make([]byte, ipLen)
	if _, err := io.ReadFull(reader, ipAddress); err != nil {
		return nil, err
	}
	t.IPAddress = string(ipAddress)

	remembered, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	t.Remembered = remembered == 1

	if err := binary.Read(reader, binary.BigEndian, &t.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &t.ExpiresAt); err != nil {
		return nil, err
	}

	return t, nil
}
