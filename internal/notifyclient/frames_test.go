package notifyclient

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReader_SkipsCommentsAndOtherFields(t *testing.T) {
	stream := ": ping\n\n" +
		"data: {\"type\":\"connected\"}\n\n" +
		"event: message\nid: 7\ndata: {\"type\":\"new_order\"}\n\n" +
		": ping\n\n"
	r := NewFrameReader(strings.NewReader(stream))

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"connected"}`, string(frame))

	frame, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"new_order"}`, string(frame))

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameReader_JoinsDataLines(t *testing.T) {
	r := NewFrameReader(strings.NewReader("data:a\r\ndata: b\r\n\r\n"))

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(frame))
}

func TestFrameReader_DropsTruncatedFrame(t *testing.T) {
	r := NewFrameReader(strings.NewReader("data: {\"type\":\"new_"))

	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}
