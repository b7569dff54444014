package arp

// MaxNotes is the capacity of the held-note buffer.
const MaxNotes = 16

// Pattern is the order in which held notes are stepped through.
type Pattern int

const (
	Up Pattern = iota
	Down
	UpDown
	Random
	AsPlayed
	PatternCount
)

var patternNames = [PatternCount]string{"Up", "Down", "UpDn", "Rand", "Play"}

func (p Pattern) String() string {
	if p < 0 || p >= PatternCount {
		return "???"
	}
	return patternNames[p]
}

func (p Pattern) Valid() bool { return p >= 0 && p < PatternCount }

// Division is the note length of one step.
type Division int

const (
	Quarter Division = iota
	Eighth
	Sixteenth
	ThirtySecond
	DivisionCount
)

var (
	divisionNames = [DivisionCount]string{"1/4", "1/8", "1/16", "1/32"}
	// steps per beat
	divisionMult = [DivisionCount]float32{1, 2, 4, 8}
)

func (d Division) String() string {
	if d < 0 || d >= DivisionCount {
		return "???"
	}
	return divisionNames[d]
}

func (d Division) Valid() bool { return d >= 0 && d < DivisionCount }

const (
	MinTempo   = 40
	MaxTempo   = 240
	MinOctaves = 1
	MaxOctaves = 4
	MinGate    = 0.1
	MaxGate    = 1.0
)

// Event is a note-on or note-off emitted by Process.
type Event struct {
	On       bool
	Note     int
	Velocity int
}

// Settings are the user-facing arpeggiator parameters.
type Settings struct {
	Enabled  bool
	Pattern  Pattern
	Division Division
	Tempo    float32
	Octaves  int
	Gate     float32
}

// DefaultSettings returns a disabled 1/8 Up pattern at 120 BPM.
func DefaultSettings() Settings {
	return Settings{
		Pattern:  Up,
		Division: Eighth,
		Tempo:    120,
		Octaves:  1,
		Gate:     0.5,
	}
}

type heldNote struct {
	note     int
	velocity int
}

const defaultSeed = 12345

// Arpeggiator turns held notes into a clocked sequence of note events.
// It never allocates; all buffers are fixed size.
type Arpeggiator struct {
	settings Settings

	held   [MaxNotes]heldNote // insertion order
	sorted [MaxNotes]heldNote // ascending pitch
	count  int

	step      int
	octave    int
	direction int
	phase     float32
	lastNote  int
	noteOn    bool
	fresh     bool // next Process rewinds and sounds immediately
	seed      uint32
}

// New returns an arpeggiator with DefaultSettings.
func New() *Arpeggiator {
	a := &Arpeggiator{
		settings: DefaultSettings(),
		seed:     defaultSeed,
	}
	a.Clear()
	return a
}

// NoteOn adds a held note, or updates its velocity if already held.
// A full buffer ignores new notes.
func (a *Arpeggiator) NoteOn(note, velocity int) {
	for i := 0; i < a.count; i++ {
		if a.held[i].note == note {
			a.held[i].velocity = velocity
			a.rebuild()
			return
		}
	}
	if a.count >= MaxNotes {
		return
	}
	if a.count == 0 {
		a.fresh = true
	}
	a.held[a.count] = heldNote{note: note, velocity: velocity}
	a.count++
	a.rebuild()
}

// NoteOff removes a held note.
func (a *Arpeggiator) NoteOff(note int) {
	for i := 0; i < a.count; i++ {
		if a.held[i].note != note {
			continue
		}
		copy(a.held[i:a.count-1], a.held[i+1:a.count])
		a.count--
		a.rebuild()
		if a.step >= a.count && a.count > 0 {
			a.step = 0
			a.octave = 0
		}
		return
	}
}

// Clear drops every held note and rewinds the sequence. A sounding note
// is forgotten without a note-off; callers that need one should disable
// the arpeggiator first.
func (a *Arpeggiator) Clear() {
	a.count = 0
	a.step = 0
	a.octave = 0
	a.direction = 1
	a.phase = 0
	a.lastNote = -1
	a.noteOn = false
	a.fresh = true
}

// rebuild refreshes the sorted working copy with an insertion sort.
func (a *Arpeggiator) rebuild() {
	copy(a.sorted[:a.count], a.held[:a.count])
	for i := 1; i < a.count; i++ {
		n := a.sorted[i]
		j := i - 1
		for j >= 0 && a.sorted[j].note > n.note {
			a.sorted[j+1] = a.sorted[j]
			j--
		}
		a.sorted[j+1] = n
	}
}

func (a *Arpeggiator) notes() []heldNote {
	if a.settings.Pattern == AsPlayed {
		return a.held[:a.count]
	}
	return a.sorted[:a.count]
}

func (a *Arpeggiator) random(n int) int {
	a.seed ^= a.seed << 13
	a.seed ^= a.seed >> 17
	a.seed ^= a.seed << 5
	return int(a.seed % uint32(n))
}

func (a *Arpeggiator) advance() {
	octaves := a.settings.Octaves
	switch a.settings.Pattern {
	case Up, AsPlayed:
		a.step++
		if a.step >= a.count {
			a.step = 0
			a.octave++
			if a.octave >= octaves {
				a.octave = 0
			}
		}
	case Down:
		a.step--
		if a.step < 0 {
			a.step = a.count - 1
			a.octave--
			if a.octave < 0 {
				a.octave = octaves - 1
			}
		}
	case UpDown:
		a.step += a.direction
		if a.direction > 0 {
			if a.step >= a.count {
				a.octave++
				if a.octave >= octaves {
					a.octave = octaves - 1
					a.step = max(a.count-2, 0)
					a.direction = -1
				} else {
					a.step = 0
				}
			}
		} else if a.step < 0 {
			a.octave--
			if a.octave < 0 {
				a.octave = 0
				a.step = 1
				if a.step >= a.count {
					a.step = 0
				}
				a.direction = 1
			} else {
				a.step = a.count - 1
			}
		}
	case Random:
		a.step = a.random(a.count)
		a.octave = a.random(octaves)
	}
}

// rewind places the sequence on its first step for the current pattern.
func (a *Arpeggiator) rewind() {
	a.direction = 1
	switch a.settings.Pattern {
	case Down:
		a.step = a.count - 1
		a.octave = a.settings.Octaves - 1
	case Random:
		a.step = a.random(a.count)
		a.octave = a.random(a.settings.Octaves)
	default:
		a.step = 0
		a.octave = 0
	}
}

func (a *Arpeggiator) stepDuration() float32 {
	return 60 / (a.settings.Tempo * divisionMult[a.settings.Division])
}

func (a *Arpeggiator) release() (Event, bool) {
	ev := Event{Note: a.lastNote}
	a.noteOn = false
	return ev, true
}

// Process advances the clock by dt seconds and returns at most one event.
func (a *Arpeggiator) Process(dt float32) (Event, bool) {
	if !a.settings.Enabled || a.count == 0 {
		if a.noteOn && a.lastNote >= 0 {
			ev, ok := a.release()
			a.lastNote = -1
			return ev, ok
		}
		return Event{}, false
	}

	if a.fresh {
		a.fresh = false
		a.phase = 0
		a.rewind()
		return a.trigger()
	}

	old := a.phase
	a.phase += dt / a.stepDuration()

	gate := a.settings.Gate
	if a.noteOn && old < gate && a.phase >= gate {
		return a.release()
	}

	if a.phase >= 1 {
		a.phase -= 1
		a.advance()
		return a.trigger()
	}
	return Event{}, false
}

func (a *Arpeggiator) trigger() (Event, bool) {
	if a.step < 0 {
		a.step = 0
	}
	if a.step >= a.count {
		a.step = a.count - 1
	}
	n := a.notes()[a.step]
	a.lastNote = n.note + a.octave*12
	a.noteOn = true
	return Event{On: true, Note: a.lastNote, Velocity: n.velocity}, true
}

// NoteCount returns the number of held notes.
func (a *Arpeggiator) NoteCount() int { return a.count }

// Settings returns the current parameters.
func (a *Arpeggiator) Settings() Settings { return a.settings }

// Apply sets every parameter through its clamping setter.
func (a *Arpeggiator) Apply(s Settings) {
	a.SetPattern(s.Pattern)
	a.SetDivision(s.Division)
	a.SetTempo(s.Tempo)
	a.SetOctaves(s.Octaves)
	a.SetGate(s.Gate)
	a.SetEnabled(s.Enabled)
}

// SetEnabled switches the arpeggiator on or off. Turning it off drops the
// held notes; the next Process still releases a sounding note.
func (a *Arpeggiator) SetEnabled(on bool) {
	if on == a.settings.Enabled {
		return
	}
	a.settings.Enabled = on
	if !on {
		a.count = 0
		a.step = 0
		a.octave = 0
		a.direction = 1
		a.phase = 0
	}
	a.fresh = true
}

func (a *Arpeggiator) SetPattern(p Pattern) {
	if !p.Valid() || p == a.settings.Pattern {
		return
	}
	a.settings.Pattern = p
	a.direction = 1
}

func (a *Arpeggiator) SetDivision(d Division) {
	if d.Valid() {
		a.settings.Division = d
	}
}

// SetTempo sets beats per minute, clamped to [40,240].
func (a *Arpeggiator) SetTempo(bpm float32) {
	a.settings.Tempo = clamp(bpm, MinTempo, MaxTempo)
}

// SetOctaves sets the octave span, clamped to [1,4].
func (a *Arpeggiator) SetOctaves(n int) {
	if n < MinOctaves {
		n = MinOctaves
	}
	if n > MaxOctaves {
		n = MaxOctaves
	}
	a.settings.Octaves = n
	if a.octave >= n {
		a.octave = 0
	}
}

// SetGate sets the held fraction of each step, clamped to [0.1,1].
func (a *Arpeggiator) SetGate(g float32) {
	a.settings.Gate = clamp(g, MinGate, MaxGate)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
