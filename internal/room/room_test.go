package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ugaemi/roomrelay/internal/ws"
)

// mockClient creates a ws.Client with a buffered Send channel for testing.
func mockClient(id string) *ws.Client {
	return &ws.Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}
}

// drainMessages reads all pending messages from a client's send channel.
func drainMessages(client *ws.Client) []ws.Message {
	var msgs []ws.Message
	for {
		select {
		case data := <-client.Send:
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

type stubTimer struct{ stopped int }

func (t *stubTimer) Stop() bool {
	t.stopped++
	return true
}

func setupTestRoom(names ...string) (*Room, []*Player) {
	r := NewRoom("TEST")
	players := make([]*Player, 0, len(names))
	for _, name := range names {
		p := NewPlayer(name, mockClient(name))
		if err := r.AddPlayer(p, 6); err != nil {
			panic(err)
		}
		players = append(players, p)
	}
	return r, players
}

func TestAddPlayer_FirstPlayerIsHost(t *testing.T) {
	r, players := setupTestRoom("alice", "bob")

	assert.Equal(t, players[0].ID, r.HostID)
	assert.True(t, players[0].IsHost)
	assert.False(t, players[1].IsHost)
	assert.Equal(t, PhaseLobby, r.Phase)
}

func TestAddPlayer_RoomFull(t *testing.T) {
	r := NewRoom("TEST")
	for i := 0; i < 3; i++ {
		require.NoError(t, r.AddPlayer(NewPlayer("p", mockClient("c")), 3), "join %d", i)
	}

	err := r.AddPlayer(NewPlayer("late", mockClient("late")), 3)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 3, r.PlayerCount())
}

func TestAddPlayer_RejectedOnceActive(t *testing.T) {
	r, _ := setupTestRoom("alice", "bob")
	r.Start(200)

	err := r.AddPlayer(NewPlayer("carol", mockClient("carol")), 6)
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
	assert.Equal(t, 2, r.PlayerCount())
}

func TestRemovePlayer_ClearsHostAndCancelsRemoval(t *testing.T) {
	r, players := setupTestRoom("alice", "bob")
	timer := &stubTimer{}
	players[0].Disconnect()
	players[0].ScheduleRemoval(timer)

	removed := r.RemovePlayer(players[0].ID)

	require.NotNil(t, removed)
	assert.Equal(t, 1, timer.stopped)
	assert.Empty(t, r.HostID)
	assert.Nil(t, r.Player(players[0].ID))
	assert.Nil(t, r.RemovePlayer(players[0].ID), "second removal is a no-op")
}

func TestElectHost_FirstConnectedInJoinOrder(t *testing.T) {
	r, players := setupTestRoom("alice", "bob", "carol", "dave")
	players[1].Disconnect()
	r.RemovePlayer(players[0].ID)

	id, ok := r.ElectHost()

	require.True(t, ok)
	assert.Equal(t, players[2].ID, id)
	assert.Equal(t, players[2].ID, r.HostID)
	assert.True(t, players[2].IsHost)
	assert.False(t, players[1].IsHost)
	assert.False(t, players[3].IsHost)
}

func TestElectHost_NoConnectedPlayers(t *testing.T) {
	r, players := setupTestRoom("alice", "bob")
	players[1].Disconnect()
	r.RemovePlayer(players[0].ID)

	_, ok := r.ElectHost()

	assert.False(t, ok)
	assert.Empty(t, r.HostID)
	assert.False(t, players[1].IsHost)
}

func TestBroadcast_SkipsSenderAndDisconnected(t *testing.T) {
	r, players := setupTestRoom("alice", "bob", "carol")
	carolClient := players[2].Client
	players[2].Disconnect()

	r.Broadcast(ws.Message{Type: ws.TypePong}, players[0].ID)

	assert.Empty(t, drainMessages(players[0].Client))
	assert.Len(t, drainMessages(players[1].Client), 1)
	assert.Empty(t, drainMessages(carolClient))
}

func TestPlayerList_JoinOrderAndWireShape(t *testing.T) {
	r, players := setupTestRoom("alice", "bob")
	players[1].Disconnect()

	data, err := json.Marshal(r.PlayerList())
	require.NoError(t, err)

	expected := `[
		{"id":"` + players[0].ID + `","displayName":"alice","isHost":true,"connectionState":"connected"},
		{"id":"` + players[1].ID + `","displayName":"bob","isHost":false,"connectionState":"disconnected"}
	]`
	assert.JSONEq(t, expected, string(data))
}

func TestReconnect_CancelsRemoval(t *testing.T) {
	_, players := setupTestRoom("alice")
	p := players[0]
	timer := &stubTimer{}

	p.Disconnect()
	p.ScheduleRemoval(timer)
	assert.True(t, p.RemovalPending(timer))

	c := mockClient("new")
	p.Reconnect(c)

	assert.True(t, p.IsConnected())
	assert.Same(t, c, p.Client)
	assert.Equal(t, 1, timer.stopped)
	assert.False(t, p.RemovalPending(timer))
}

func TestStart_IsOneWay(t *testing.T) {
	r, _ := setupTestRoom("alice", "bob")
	r.Start(150)

	assert.Equal(t, PhaseActive, r.Phase)
	assert.Equal(t, 150, r.TargetScore)

	r.RemovePlayer(r.HostID)
	r.ElectHost()
	assert.Equal(t, PhaseActive, r.Phase)
}

func TestAddPlayer_NeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(2, 8).Draw(rt, "capacity")
		attempts := rapid.IntRange(1, 20).Draw(rt, "attempts")

		r := NewRoom("PROP")
		fullErrors := 0
		for n := 0; n < attempts; n++ {
			err := r.AddPlayer(NewPlayer("p", mockClient("c")), capacity)
			if err != nil {
				assert.ErrorIs(rt, err, ErrRoomFull)
				fullErrors++
			}
		}

		assert.LessOrEqual(rt, r.PlayerCount(), capacity)
		assert.Equal(rt, max(0, attempts-capacity), fullErrors)
	})
}

func TestCanAdd_DoesNotMutate(t *testing.T) {
	r, _ := setupTestRoom("alice", "bob")

	assert.NoError(t, r.CanAdd(3))
	assert.ErrorIs(t, r.CanAdd(2), ErrRoomFull)
	r.Start(10)
	assert.ErrorIs(t, r.CanAdd(3), ErrGameAlreadyStarted)
	assert.Equal(t, 2, r.PlayerCount())
}
