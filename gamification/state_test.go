package gamification

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestStateJSONRoundTrip(t *testing.T) {
	in := State{
		Points:          250,
		TotalCheckins:   12,
		TotalJournals:   3,
		CurrentStreak:   4,
		LongestStreak:   9,
		LastCheckinDate: datePtr(date(2024, time.May, 2)),
		UnlockedBadges:  []string{"first_checkin", "journal_starter", "century"},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"lastCheckinDate":"2024-05-02"`) {
		t.Fatalf("date not encoded as calendar day: %s", b)
	}

	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestStateJSONRoundTripLargeValues(t *testing.T) {
	for _, points := range []int{1<<31 + 1, 25_000_000_000, 1<<53 + 1, math.MaxInt} {
		in := State{Points: points, TotalCheckins: 1 << 32, UnlockedBadges: []string{}}
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatal(err)
		}
		var out State
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("round trip of %d points:\n in: %+v\nout: %+v", points, in, out)
		}
	}

	var st State
	if err := json.Unmarshal([]byte(`{"points":"25000000000","totalJournals":1e30}`), &st); err != nil {
		t.Fatal(err)
	}
	if st.Points != 25_000_000_000 || st.TotalJournals != math.MaxInt {
		t.Fatalf("decode of large values = %+v", st)
	}
}

func TestStateMarshalDefaults(t *testing.T) {
	b, err := json.Marshal(State{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"points":0,"totalCheckins":0,"totalJournals":0,"currentStreak":0,"longestStreak":0,"lastCheckinDate":null,"unlockedBadges":[]}`
	if string(b) != want {
		t.Fatalf("marshal zero state = %s, want %s", b, want)
	}
}

func TestStateUnmarshalDefaultsFieldsIndividually(t *testing.T) {
	raw := `{
		"points": "120",
		"totalCheckins": 4.9,
		"totalJournals": {"bad": true},
		"currentStreak": 3,
		"lastCheckinDate": 20240101,
		"unlockedBadges": ["first_checkin", 7, "", "century"],
		"extra": "ignored"
	}`
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := State{
		Points:         120,
		TotalCheckins:  4,
		TotalJournals:  0,
		CurrentStreak:  3,
		LongestStreak:  0,
		UnlockedBadges: []string{"first_checkin", "century"},
	}
	if !reflect.DeepEqual(st, want) {
		t.Fatalf("lenient decode = %+v, want %+v", st, want)
	}
}

func TestStateUnmarshalAcceptsTimestampDate(t *testing.T) {
	var st State
	if err := json.Unmarshal([]byte(`{"lastCheckinDate":"2024-07-04T10:00:00.000Z"}`), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.LastCheckinDate == nil || *st.LastCheckinDate != date(2024, time.July, 4) {
		t.Fatalf("lastCheckinDate = %v", st.LastCheckinDate)
	}
}

func TestStateUnmarshalRejectsNonObject(t *testing.T) {
	var st State
	if err := json.Unmarshal([]byte(`[1,2,3]`), &st); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestStateNormalize(t *testing.T) {
	st := State{
		Points:         -10,
		TotalCheckins:  -1,
		CurrentStreak:  5,
		LongestStreak:  2,
		UnlockedBadges: []string{"century", "retired_badge", "century", "first_checkin"},
	}
	st.Normalize(DefaultCatalog())

	if st.Points != 0 || st.TotalCheckins != 0 {
		t.Fatalf("negative counters not clamped: %+v", st)
	}
	if st.LongestStreak != 5 {
		t.Fatalf("longest streak = %d, want 5", st.LongestStreak)
	}
	if !reflect.DeepEqual(st.UnlockedBadges, []string{"century", "first_checkin"}) {
		t.Fatalf("unlocked badges = %v", st.UnlockedBadges)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	st := State{LastCheckinDate: datePtr(date(2024, time.January, 1)), UnlockedBadges: []string{"century"}}
	cp := st.Clone()
	cp.UnlockedBadges[0] = "superstar"
	*cp.LastCheckinDate = date(2025, time.January, 1)
	if st.UnlockedBadges[0] != "century" || st.LastCheckinDate.Year != 2024 {
		t.Fatalf("Clone shares memory with original: %+v", st)
	}
}
