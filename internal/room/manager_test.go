package room

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom_HostIsSoleMember(t *testing.T) {
	m := NewManager(DefaultMaxCodeAttempts)
	c := mockClient("c1")

	r, p, err := m.CreateRoom("alice", c)
	require.NoError(t, err)

	assert.Len(t, r.Code, codeLength)
	assert.Equal(t, p.ID, r.HostID)
	assert.True(t, p.IsHost)
	assert.Same(t, c, p.Client)
	assert.Equal(t, 1, r.PlayerCount())
	assert.Equal(t, PhaseLobby, r.Phase)
	assert.Equal(t, 1, m.RoomCount())
}

func TestGetRoom_CaseInsensitive(t *testing.T) {
	m := NewManager(DefaultMaxCodeAttempts)
	r, _, err := m.CreateRoom("alice", mockClient("c1"))
	require.NoError(t, err)

	assert.Same(t, r, m.GetRoom(strings.ToLower(r.Code)))
	assert.Same(t, r, m.GetRoom(" "+r.Code+" "))
	assert.Nil(t, m.GetRoom("ZZZZZ"))
}

func TestRemoveRoom(t *testing.T) {
	m := NewManager(DefaultMaxCodeAttempts)
	r, _, err := m.CreateRoom("alice", mockClient("c1"))
	require.NoError(t, err)

	m.RemoveRoom(r.Code)

	assert.Nil(t, m.GetRoom(r.Code))
	assert.Equal(t, 0, m.RoomCount())
}

func TestCreateRoom_CodeSpaceExhausted(t *testing.T) {
	m := NewManager(5)
	m.newCode = func() string { return "K7Q2" }

	_, _, err := m.CreateRoom("alice", mockClient("c1"))
	require.NoError(t, err)

	_, _, err = m.CreateRoom("bob", mockClient("c2"))
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, 1, m.RoomCount())
}

func TestCreateRoom_RetriesOnCollision(t *testing.T) {
	m := NewManager(DefaultMaxCodeAttempts)
	codes := []string{"AAAA", "AAAA", "BBBB"}
	m.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	first, _, err := m.CreateRoom("alice", mockClient("c1"))
	require.NoError(t, err)
	second, _, err := m.CreateRoom("bob", mockClient("c2"))
	require.NoError(t, err)

	assert.Equal(t, "AAAA", first.Code)
	assert.Equal(t, "BBBB", second.Code)
}

func TestRandomCode_UsesUnambiguousAlphabet(t *testing.T) {
	for n := 0; n < 200; n++ {
		code, err := generateCode(func(string) bool { return false }, 1, randomCode)
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(alphabet, ch), "unexpected rune %q", ch)
		}
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "1")
	}
}

func TestNewPlayer_UniqueIdentities(t *testing.T) {
	seen := make(map[string]bool)
	for n := 0; n < 100; n++ {
		p := NewPlayer("p", nil)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}
