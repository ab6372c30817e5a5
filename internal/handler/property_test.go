package handler

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/ws"
)

// knownRooms tracks the codes handed out in room_created replies.
type knownRooms struct {
	codes   []string
	started map[string]bool
}

func (k *knownRooms) observe(msgs []ws.Message) {
	for _, m := range msgs {
		if m.Type != ws.TypeRoomCreated {
			continue
		}
		var p enteredPayload
		if err := json.Unmarshal(m.Data, &p); err == nil && !slices.Contains(k.codes, p.RoomCode) {
			k.codes = append(k.codes, p.RoomCode)
		}
	}
	slices.Sort(k.codes)
}

// check asserts the invariants that must hold between any two messages and
// forgets rooms that were closed.
func (k *knownRooms) check(rt *rapid.T, env *testEnv, capacity int) {
	live := k.codes[:0]
	for _, code := range k.codes {
		r := env.rm.GetRoom(code)
		if r == nil {
			delete(k.started, code)
			continue
		}
		live = append(live, code)

		if r.IsEmpty() {
			rt.Fatalf("room %s is empty but still stored", code)
		}
		if r.PlayerCount() > capacity {
			rt.Fatalf("room %s has %d players, capacity %d", code, r.PlayerCount(), capacity)
		}

		hosts := 0
		for _, p := range r.Players() {
			if p.IsHost {
				hosts++
				if p.ID != r.HostID {
					rt.Fatalf("room %s: player %s flagged host but HostID is %q", code, p.ID, r.HostID)
				}
			}
		}
		if hosts > 1 {
			rt.Fatalf("room %s has %d hosts", code, hosts)
		}
		if r.ConnectedCount() > 0 && hosts != 1 {
			rt.Fatalf("room %s has connected players but no host", code)
		}

		if k.started[code] && r.Phase != room.PhaseActive {
			rt.Fatalf("room %s went back to lobby", code)
		}
		if r.Phase == room.PhaseActive {
			k.started[code] = true
		}
	}
	k.codes = live
}

func TestRouter_InvariantsUnderRandomSessions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const capacity = 3
		env := newTestEnv(capacity)
		clients := make([]*ws.Client, 4)
		for i := range clients {
			clients[i] = newTestClient(fmt.Sprintf("c%d", i))
		}
		known := &knownRooms{started: make(map[string]bool)}
		generation := 0

		send := func(c *ws.Client, msgType string, payload map[string]any) {
			msg, err := ws.NewMessage(msgType, payload)
			if err != nil {
				rt.Fatal(err)
			}
			raw := fmt.Appendf(nil, `{"type":%q,"data":%s}`, msg.Type, msg.Data)
			env.router.HandleMessage(&ws.ClientMessage{Client: c, Data: raw})
		}
		pickRoom := func(label string) string {
			if len(known.codes) == 0 {
				return "NONE"
			}
			return known.codes[rapid.IntRange(0, len(known.codes)-1).Draw(rt, label)]
		}

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for n := 0; n < steps; n++ {
			i := rapid.IntRange(0, len(clients)-1).Draw(rt, "client")
			c := clients[i]

			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				send(c, ws.TypeCreateRoom, map[string]any{"displayName": "p"})
			case 1:
				send(c, ws.TypeJoinRoom, map[string]any{"roomCode": pickRoom("join"), "displayName": "p"})
			case 2:
				send(c, ws.TypeLeaveRoom, nil)
			case 3:
				send(c, ws.TypeStartGame, map[string]any{"targetScore": 100})
			case 4:
				env.router.HandleDisconnect(c)
				generation++
				clients[i] = newTestClient(fmt.Sprintf("c%d-%d", i, generation))
			case 5:
				code := pickRoom("reconnect")
				if r := env.rm.GetRoom(code); r != nil {
					players := r.Players()
					p := players[rapid.IntRange(0, len(players)-1).Draw(rt, "player")]
					send(c, ws.TypeReconnect, map[string]any{"roomCode": code, "playerId": p.ID})
				}
			case 6:
				if pending := env.sched.pending(); len(pending) > 0 {
					pending[rapid.IntRange(0, len(pending)-1).Draw(rt, "timer")].fire()
				}
			}

			for _, c := range clients {
				known.observe(drainMessages(c))
			}
			known.check(rt, env, capacity)
		}
	})
}
