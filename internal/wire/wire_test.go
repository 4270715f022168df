package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"CALL 1 5",
		"STATUS carA 1 1 Closed Opening",
		strings.Repeat("x", 4096),
	}
	for _, payload := range cases {
		var buf bytes.Buffer
		if err := Send(&buf, payload); err != nil {
			t.Fatalf("Send(%q): %v", payload, err)
		}
		got, err := Receive(&buf)
		if err != nil {
			t.Fatalf("Receive after Send(%q): %v", payload, err)
		}
		if got != payload {
			t.Errorf("round trip = %q, want %q", got, payload)
		}
	}
}

type truncatedReader struct{}

func (truncatedReader) Read(p []byte) (int, error) { return 0, io.EOF }

func TestReceiveOnClosedConnReturnsDisconnected(t *testing.T) {
	_, err := Receive(truncatedReader{})
	if !errors.Is(err, ErrDisconnected) {
		t.Errorf("Receive on closed reader = %v, want ErrDisconnected", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSendToClosedConnReturnsDisconnected(t *testing.T) {
	err := Send(failingWriter{}, "hello")
	if !errors.Is(err, ErrDisconnected) {
		t.Errorf("Send on failing writer = %v, want ErrDisconnected", err)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("CALL  1   5")
	want := []string{"CALL", "1", "5"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
