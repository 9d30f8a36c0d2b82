package intersection

import (
	"encoding/json"
	"testing"
)

func TestPhase_TransitionTable(t *testing.T) {
	testCases := []struct {
		phase  Phase
		name   string
		next   Phase
		yellow bool
		roadA  Color
		roadB  Color
		active Road
	}{
		{AGreen, "A_GREEN", AYellow, false, Green, Red, RoadA},
		{AYellow, "A_YELLOW", BGreen, true, Yellow, Red, RoadA},
		{BGreen, "B_GREEN", BYellow, false, Red, Green, RoadB},
		{BYellow, "B_YELLOW", AGreen, true, Red, Yellow, RoadB},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.phase.String() != tc.name {
				t.Errorf("Expected name %s, got %s", tc.name, tc.phase)
			}
			if tc.phase.Next() != tc.next {
				t.Errorf("Expected next %s, got %s", tc.next, tc.phase.Next())
			}
			if tc.phase.IsYellow() != tc.yellow {
				t.Errorf("Expected IsYellow %v", tc.yellow)
			}
			if c := tc.phase.Color(RoadA); c != tc.roadA {
				t.Errorf("Expected road A %s, got %s", tc.roadA, c)
			}
			if c := tc.phase.Color(RoadB); c != tc.roadB {
				t.Errorf("Expected road B %s, got %s", tc.roadB, c)
			}
			if r := tc.phase.ActiveRoad(); r != tc.active {
				t.Errorf("Expected active road %s, got %s", tc.active, r)
			}
		})
	}
}

func TestPhase_MutualExclusionEveryPhase(t *testing.T) {
	for _, p := range Phases() {
		AssertMutualExclusion(t, newSnapshot("", p, 0, DefaultDurations()))
	}
}

func TestPhase_CycleReturnsToStart(t *testing.T) {
	p := AGreen
	for i := 0; i < len(Phases()); i++ {
		p = p.Next()
	}
	if p != AGreen {
		t.Errorf("Expected four steps to return to A_GREEN, got %s", p)
	}
}

func TestPhase_InvalidValuePanics(t *testing.T) {
	bogus := Phase(9)
	if bogus.Valid() {
		t.Fatal("Expected Phase(9) to be invalid")
	}
	if bogus.String() != "Phase(9)" {
		t.Errorf("Unexpected string %q", bogus.String())
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic for invalid phase")
		}
		err, ok := r.(error)
		if !ok || !IsPhaseError(err) {
			t.Errorf("Expected PhaseError panic, got %v", r)
		}
	}()
	bogus.Next()
}

func TestPhase_ParseAndText(t *testing.T) {
	for _, p := range Phases() {
		parsed, err := ParsePhase(p.String())
		if err != nil {
			t.Fatalf("Expected %s to parse, got: %v", p, err)
		}
		if parsed != p {
			t.Errorf("Expected %s, got %s", p, parsed)
		}
	}

	if p, err := ParsePhase(" b_yellow "); err != nil || p != BYellow {
		t.Errorf("Expected case-insensitive parse, got %s, %v", p, err)
	}

	_, err := ParsePhase("C_GREEN")
	if !IsArgumentError(err) {
		t.Errorf("Expected ArgumentError for unknown phase, got %v", err)
	}

	if _, err := Phase(7).MarshalText(); !IsPhaseError(err) {
		t.Errorf("Expected PhaseError marshalling invalid phase, got %v", err)
	}
}

func TestPhase_JSON(t *testing.T) {
	payload := struct {
		Phase Phase `json:"phase"`
		Color Color `json:"color"`
		Road  Road  `json:"road"`
	}{BGreen, Yellow, RoadB}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"phase":"B_GREEN","color":"yellow","road":"B"}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var decoded struct {
		Phase Phase `json:"phase"`
	}
	if err := json.Unmarshal([]byte(`{"phase":"A_YELLOW"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Phase != AYellow {
		t.Errorf("Expected A_YELLOW, got %s", decoded.Phase)
	}
}

func TestColor_Title(t *testing.T) {
	expected := map[Color]string{Off: "Off", Green: "Green", Yellow: "Yellow", Red: "Red"}
	for c, want := range expected {
		if got := c.Title(); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}
