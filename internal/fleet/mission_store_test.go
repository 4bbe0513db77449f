package fleet

import "testing"

func TestUpsertActiveMissionSetsPointer(t *testing.T) {
	s := NewMissionStore()
	s.Upsert(Mission{ID: "m1", Name: "recon", Status: MissionDraft})
	if _, ok := s.Active(); ok {
		t.Fatalf("draft mission must not become active")
	}

	s.Upsert(Mission{ID: "m2", Name: "patrol", Status: MissionActive})
	active, ok := s.Active()
	if !ok || active.ID != "m2" {
		t.Fatalf("active = %+v, want m2", active)
	}

	// A later active mission takes over the pointer.
	s.Upsert(Mission{ID: "m3", Status: MissionActive})
	if active, _ := s.Active(); active.ID != "m3" {
		t.Errorf("active = %s, want m3", active.ID)
	}
}

func TestReplaceAllPicksFirstActive(t *testing.T) {
	s := NewMissionStore()
	s.Upsert(Mission{ID: "m9", Status: MissionActive})

	s.ReplaceAll(map[string]Mission{
		"m1": {ID: "m1", Status: MissionCompleted},
		"m2": {ID: "m2", Status: MissionActive},
		"m3": {ID: "m3", Status: MissionActive},
	})

	active, ok := s.Active()
	if !ok || active.ID != "m2" {
		t.Errorf("active = %+v, want first active match m2", active)
	}
}

func TestRouteForFollowsSequence(t *testing.T) {
	m := Mission{
		ID: "m1",
		Waypoints: map[string][]Waypoint{
			"r1": {
				{ID: "w3", Sequence: 2, Action: "loiter"},
				{ID: "w1", Sequence: 0, Action: "navigate"},
				{ID: "w2", Sequence: 1, Action: "scan"},
			},
		},
	}
	route := m.RouteFor("r1")
	for i, want := range []string{"w1", "w2", "w3"} {
		if route[i].ID != want {
			t.Fatalf("route[%d] = %s, want %s", i, route[i].ID, want)
		}
	}
	if len(m.RouteFor("unknown")) != 0 {
		t.Errorf("unknown robot should yield empty route")
	}
}
