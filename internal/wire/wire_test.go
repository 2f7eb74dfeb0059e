package wire

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipfmt/internal/message"
)

func TestRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_ = New(a).WriteMsg(&message.Message{
			Type:   message.TypeStatusResponse,
			Status: &message.Status{State: "running", Markers: []string{"#%format"}},
		})
	}()

	msg, err := New(b).ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, message.TypeStatusResponse, msg.Type)
	require.NotNil(t, msg.Status)
	assert.Equal(t, "running", msg.Status.State)
}

func TestReadMsgRejectsOversizedLines(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_, _ = a.Write([]byte(`{"type":"STATUS","source":"` + strings.Repeat("x", MaxMessageSize) + "\"}\n"))
	}()

	_, err := New(b).ReadMsg()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
