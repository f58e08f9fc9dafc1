package video

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomProvider_StartCall(t *testing.T) {
	p, err := NewRoomProvider("https://meet.example.org/rooms/")
	require.NoError(t, err)

	a, err := p.StartCall(context.Background(), "dr1", "pat1")
	require.NoError(t, err)
	b, err := p.StartCall(context.Background(), "dr1", "pat1")
	require.NoError(t, err)

	assert.NotEqual(t, a.Room, b.Room)
	assert.True(t, strings.HasPrefix(a.URL, "https://meet.example.org/rooms/th-"), a.URL)
	assert.Equal(t, "dr1", a.Host)
	assert.Equal(t, "pat1", a.Guest)
}

func TestRoomProvider_Rejects(t *testing.T) {
	_, err := NewRoomProvider("ftp://x")
	assert.Error(t, err)

	p, err := NewRoomProvider("http://localhost:8443")
	require.NoError(t, err)
	_, err = p.StartCall(context.Background(), "pat1", "pat1")
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.StartCall(ctx, "pat1", "dr1")
	assert.ErrorIs(t, err, context.Canceled)
}
