package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Controller numbers the engine responds to.
const (
	CCModWheel    = 1
	CCResonance   = 71
	CCRelease     = 72
	CCAttack      = 73
	CCCutoff      = 74
	CCReverb      = 91
	CCDelay       = 94
	CCAllSoundOff = 120
	CCAllNotesOff = 123
)

// Kind is the type of a channel message.
type Kind int

const (
	NoteOff Kind = iota
	NoteOn
	ControlChange
)

func (k Kind) String() string {
	switch k {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case ControlChange:
		return "ControlChange"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a decoded channel message. Data1 is the note or controller
// number, Data2 the velocity or controller value.
type Event struct {
	Kind    Kind
	Channel int
	Data1   int
	Data2   int
}

func (e Event) String() string {
	return fmt.Sprintf("%s ch=%d %d %d", e.Kind, e.Channel, e.Data1, e.Data2)
}

// FromMessage decodes a note on, note off or control change on any
// channel. A note on with velocity 0 decodes as a note off. Every other
// message is rejected.
func FromMessage(msg gomidi.Message) (Event, bool) {
	var ch, d1, d2 uint8
	switch {
	case msg.GetNoteStart(&ch, &d1, &d2):
		return Event{Kind: NoteOn, Channel: int(ch), Data1: int(d1), Data2: int(d2)}, true
	case msg.GetNoteEnd(&ch, &d1):
		return Event{Kind: NoteOff, Channel: int(ch), Data1: int(d1)}, true
	case msg.GetControlChange(&ch, &d1, &d2):
		return Event{Kind: ControlChange, Channel: int(ch), Data1: int(d1), Data2: int(d2)}, true
	}
	return Event{}, false
}

// Message encodes e for a MIDI output. Data bytes are masked to 7 bits.
func (e Event) Message() gomidi.Message {
	ch := uint8(e.Channel & 0x0F)
	d1, d2 := uint8(e.Data1&0x7F), uint8(e.Data2&0x7F)
	switch e.Kind {
	case NoteOn:
		return gomidi.NoteOn(ch, d1, d2)
	case NoteOff:
		return gomidi.NoteOff(ch, d1)
	case ControlChange:
		return gomidi.ControlChange(ch, d1, d2)
	}
	return nil
}

// NoteOnEvent builds a channel 0 note-on.
func NoteOnEvent(note, velocity int) Event {
	return Event{Kind: NoteOn, Data1: note, Data2: velocity}
}

// NoteOffEvent builds a channel 0 note-off.
func NoteOffEvent(note int) Event {
	return Event{Kind: NoteOff, Data1: note}
}

// CCEvent builds a channel 0 control change.
func CCEvent(cc, value int) Event {
	return Event{Kind: ControlChange, Data1: cc, Data2: value}
}
