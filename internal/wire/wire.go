// Package wire reads and writes newline-delimited JSON messages over a
// net.Conn.
//
// Wire format:
//
//	<json>\n
package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"time"

	"go.klb.dev/clipfmt/internal/message"
)

const (
	// MaxMessageSize is the largest message we will read (1 MiB).
	MaxMessageSize = 1024 * 1024

	writeDeadline = 5 * time.Second
)

// Conn wraps a net.Conn with buffered newline-delimited JSON framing.
type Conn struct {
	conn net.Conn
	br   *bufio.Reader
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 16*1024),
	}
}

// SetReadDeadline sets or clears the read deadline.
func (c *Conn) SetReadDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(d))
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// WriteMsg serialises msg to JSON and writes it followed by a newline.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_, err = c.conn.Write(line)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}

// ReadMsg reads one newline-terminated line and deserialises it.
func (c *Conn) ReadMsg() (*message.Message, error) {
	var buf bytes.Buffer
	for {
		chunk, err := c.br.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > MaxMessageSize {
			return nil, fmt.Errorf("message too large (> %d bytes)", MaxMessageSize)
		}
		if err == nil {
			break
		}
		if err != bufio.ErrBufferFull {
			return nil, err
		}
	}
	line := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return message.Decode(line)
}
