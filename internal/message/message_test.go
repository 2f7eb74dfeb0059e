package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsUntyped(t *testing.T) {
	_, err := Decode([]byte(`{"source":"cli"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	b, err := (&Message{Type: TypePause}).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PAUSE"}`, string(b))
}

func TestErrorf(t *testing.T) {
	m := Errorf("unknown request %q", "X")
	assert.Equal(t, TypeError, m.Type)
	assert.Equal(t, `unknown request "X"`, m.Error)
}
