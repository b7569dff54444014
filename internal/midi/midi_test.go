package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestFromMessage(t *testing.T) {
	tests := []struct {
		msg  gomidi.Message
		want Event
		ok   bool
	}{
		{gomidi.NoteOn(0, 60, 100), Event{Kind: NoteOn, Data1: 60, Data2: 100}, true},
		{gomidi.NoteOn(3, 61, 20), Event{Kind: NoteOn, Channel: 3, Data1: 61, Data2: 20}, true},
		{gomidi.NoteOn(0, 62, 0), Event{Kind: NoteOff, Data1: 62}, true},
		{gomidi.Message{0x80, 60, 64}, Event{Kind: NoteOff, Data1: 60}, true},
		{gomidi.ControlChange(0, CCCutoff, 127), Event{Kind: ControlChange, Data1: CCCutoff, Data2: 127}, true},
		{gomidi.Pitchbend(0, 100), Event{}, false},
		{gomidi.ProgramChange(0, 5), Event{}, false},
		{gomidi.Message{0xF0, 0x7E, 0x10, 0xF7}, Event{}, false},
	}
	for _, tt := range tests {
		got, ok := FromMessage(tt.msg)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FromMessage(% X) = %v, %v; want %v, %v", []byte(tt.msg), got, ok, tt.want, tt.ok)
		}
	}
}

func TestEventMessageRoundTrip(t *testing.T) {
	for _, ev := range []Event{
		NoteOnEvent(60, 100),
		NoteOffEvent(72),
		CCEvent(CCAllSoundOff, 0),
		{Kind: NoteOn, Channel: 9, Data1: 36, Data2: 127},
	} {
		got, ok := FromMessage(ev.Message())
		if !ok || got != ev {
			t.Errorf("%v encoded as % X decodes to %v, %v", ev, []byte(ev.Message()), got, ok)
		}
	}
	if m := (Event{Kind: NoteOn, Data1: 0xBC, Data2: 0xFF}).Message(); m[1] != 0x3C || m[2] != 0x7F {
		t.Errorf("data bytes not masked: % X", []byte(m))
	}
	if m := (Event{Kind: Kind(7)}).Message(); m != nil {
		t.Errorf("unknown kind encoded as % X", []byte(m))
	}
}

func TestReceiverDropsUnhandledMessages(t *testing.T) {
	var got []Event
	recv := receiver(func(ev Event) { got = append(got, ev) })
	recv(gomidi.NoteOn(1, 64, 90), 0)
	recv(gomidi.Pitchbend(1, -200), 3)
	recv(gomidi.ControlChange(1, CCReverb, 40), 5)
	recv(gomidi.NoteOff(1, 64), 9)
	want := []Event{
		{Kind: NoteOn, Channel: 1, Data1: 64, Data2: 90},
		{Kind: ControlChange, Channel: 1, Data1: CCReverb, Data2: 40},
		{Kind: NoteOff, Channel: 1, Data1: 64},
	}
	if len(got) != len(want) {
		t.Fatalf("received %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKindString(t *testing.T) {
	if NoteOn.String() != "NoteOn" || Kind(9).String() != "Kind(9)" {
		t.Errorf("unexpected names %q %q", NoteOn, Kind(9))
	}
}

func TestKeyMapLatchesNotes(t *testing.T) {
	k := NewKeyMap()
	evs := k.Translate('a')
	if len(evs) != 1 || evs[0] != NoteOnEvent(60, 100) {
		t.Fatalf("first press = %v, want note on 60", evs)
	}
	evs = k.Translate('a')
	if len(evs) != 1 || evs[0] != NoteOffEvent(60) {
		t.Fatalf("second press = %v, want note off 60", evs)
	}
	if evs := k.Translate('k'); evs[0].Data1 != 72 {
		t.Errorf("'k' = %d, want 72", evs[0].Data1)
	}
	if evs := k.Translate('w'); evs[0].Data1 != 61 {
		t.Errorf("'w' = %d, want 61", evs[0].Data1)
	}
	if evs := k.Translate('q'); evs != nil {
		t.Errorf("unmapped key produced %v", evs)
	}
}

func TestKeyMapOctaveShift(t *testing.T) {
	k := NewKeyMap()
	k.Translate('z')
	if evs := k.Translate('a'); evs[0].Data1 != 48 {
		t.Errorf("octave down 'a' = %d, want 48", evs[0].Data1)
	}
	for i := 0; i < 20; i++ {
		k.Translate('x')
	}
	if k.Octave() != maxOctave {
		t.Errorf("octave = %d, want %d", k.Octave(), maxOctave)
	}
	if evs := k.Translate('k'); evs[0].Data1 != 120 {
		t.Errorf("top key = %d, want 120", evs[0].Data1)
	}
}

func TestKeyMapSpaceReleasesAll(t *testing.T) {
	k := NewKeyMap()
	k.Translate('a')
	k.Translate('d')
	evs := k.Translate(' ')
	want := []Event{NoteOffEvent(60), NoteOffEvent(64), CCEvent(CCAllSoundOff, 0)}
	if len(evs) != len(want) {
		t.Fatalf("space = %v, want %v", evs, want)
	}
	for i := range want {
		if evs[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, evs[i], want[i])
		}
	}
	if evs := k.Translate('a'); evs[0].Kind != NoteOn {
		t.Error("latch should be cleared after space")
	}
}
