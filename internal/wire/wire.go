// Package wire implements the system's framed transport: every message is
// a 4-byte big-endian length prefix followed by that many bytes of an
// ASCII, space-separated payload. Reads and writes are fully looped so a
// short read/write from the kernel never truncates a message.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrDisconnected is returned whenever the peer closes the connection
// mid-frame, or a write to it fails. Callers should treat it as "the
// connection is gone" rather than inspect the wrapped cause.
var ErrDisconnected = errors.New("wire: peer disconnected")

// maxFrameLength guards against a hostile or corrupt length prefix causing
// an unbounded allocation; no legitimate message in this protocol
// approaches this size.
const maxFrameLength = 1 << 20

// Send writes payload as one length-prefixed frame to w.
func Send(w io.Writer, payload string) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if err := writeFull(w, hdr[:]); err != nil {
		return err
	}
	if err := writeFull(w, []byte(payload)); err != nil {
		return err
	}
	return nil
}

// Receive reads one length-prefixed frame from r and returns its payload.
func Receive(r io.Reader) (string, error) {
	var hdr [4]byte
	if err := readFull(r, hdr[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameLength {
		return "", ErrDisconnected
	}
	buf := make([]byte, n)
	if err := readFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return ErrDisconnected
	}
	return nil
}

func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return ErrDisconnected
		}
		buf = buf[n:]
	}
	return nil
}

// Tokenize splits msg on single spaces, mirroring the original protocol's
// tokenizer: empty fields between repeated spaces are dropped.
func Tokenize(msg string) []string {
	var tokens []string
	start := -1
	for i := 0; i <= len(msg); i++ {
		if i == len(msg) || msg[i] == ' ' {
			if start >= 0 {
				tokens = append(tokens, msg[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	return tokens
}
