package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionV1 = 1

const (
	flagPendingVerification = 1 << 0
	flagVerified            = 1 << 1
)

// Encode serializes a session into the compact binary format. The SessionID
// itself is not encoded; it is the Redis key.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionV1)

	var flags byte
	if s.PendingVerification {
		flags |= flagPendingVerification
	}
	if s.Verified {
		flags |= flagVerified
	}
	buf.WriteByte(flags)

	if len(s.IdentityID) > 255 {
		return nil, errors.New("identityID too long")
	}
	buf.WriteByte(byte(len(s.IdentityID)))
	buf.WriteString(s.IdentityID)

	if err := binary.Write(&buf, binary.BigEndian, s.VerifyAttempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LoginAttempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LastLoginAttempt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses the binary format back into a session.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	s.PendingVerification = flags&flagPendingVerification != 0
	s.Verified = flags&flagVerified != 0

	identityLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	identity := make([]byte, identityLen)
	if _, err := io.ReadFull(reader, identity); err != nil {
		return nil, err
	}
	s.IdentityID = string(identity)

	if err := binary.Read(reader, binary.BigEndian, &s.VerifyAttempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.LoginAttempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.LastLoginAttempt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}
