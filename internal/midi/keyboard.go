package midi

// Piano layout on a QWERTY home row: white keys on a s d f g h j k,
// black keys on w e t y u.
var keyOffsets = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

const (
	minOctave = -1
	maxOctave = 8
)

// KeyMap turns computer-keyboard bytes into note events. Terminals report
// key presses but not releases, so each note key latches: the first press
// sounds the note, the next press of the same key releases it.
type KeyMap struct {
	octave   int
	velocity int
	held     [128]bool
}

// NewKeyMap starts at octave 4 ('a' is middle C) with velocity 100.
func NewKeyMap() *KeyMap {
	return &KeyMap{octave: 4, velocity: 100}
}

// Octave returns the octave of the 'a' key.
func (k *KeyMap) Octave() int { return k.octave }

// Translate maps one key. 'z' and 'x' shift the octave, space releases
// every latched note and sends All Sound Off. Other bytes are ignored.
func (k *KeyMap) Translate(b byte) []Event {
	switch b {
	case 'z':
		if k.octave > minOctave {
			k.octave--
		}
		return nil
	case 'x':
		if k.octave < maxOctave {
			k.octave++
		}
		return nil
	case ' ':
		var out []Event
		for n := range k.held {
			if k.held[n] {
				k.held[n] = false
				out = append(out, NoteOffEvent(n))
			}
		}
		return append(out, CCEvent(CCAllSoundOff, 0))
	}

	off, ok := keyOffsets[b]
	if !ok {
		return nil
	}
	note := (k.octave+1)*12 + off
	if note < 0 || note > 127 {
		return nil
	}
	if k.held[note] {
		k.held[note] = false
		return []Event{NoteOffEvent(note)}
	}
	k.held[note] = true
	return []Event{NoteOnEvent(note, k.velocity)}
}
