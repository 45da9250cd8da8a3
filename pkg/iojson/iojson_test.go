package iojson

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalError(t *testing.T) {
	out := MarshalError("boom", map[string]any{"detail": "broken pipe"})

	var parsed Error
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "boom", parsed.Message)
	assert.Equal(t, "broken pipe", parsed.Data["detail"])
}

func TestMarshalError_UnmarshalableData(t *testing.T) {
	// A channel cannot be marshaled; the fallback blob must still be
	// valid JSON carrying the original message.
	out := MarshalError("boom", map[string]any{"ch": make(chan int)})

	var parsed Error
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "boom", parsed.Message)
	assert.Contains(t, parsed.Data, "json_error")
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"count": 3}))

	assert.Empty(t, errOut.String())
	assert.JSONEq(t, `{"count": 3}`, out.String())
	// Indented form, one trailing newline.
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
	assert.Contains(t, out.String(), "  \"count\"")
}

func TestWriteWith_MarshalFailureGoesToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))

	assert.Empty(t, out.String())

	var parsed Error
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &parsed))
	assert.Contains(t, parsed.Data, "json_error")
}

func TestWriteLine(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, WriteLine(&out, map[string]string{"id": "run-1"}))

	// Compact single line, newline terminated.
	assert.Equal(t, `{"id":"run-1"}`+"\n", out.String())
}
