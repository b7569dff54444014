package osc

import (
	"math"
	"testing"

	"github.com/cbegin/butterysynth-go/internal/wavetable"
)

func TestMidiToFreq(t *testing.T) {
	cases := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6256},
	}
	for _, c := range cases {
		got := float64(MidiToFreq(c.note))
		if math.Abs(got-c.want) > 1e-3 {
			t.Errorf("MidiToFreq(%d) = %f, want %f", c.note, got, c.want)
		}
	}
}

func TestSawStartsAtMinusOneAndRamps(t *testing.T) {
	o := New(100)
	o.SetWaveform(Saw)
	o.SetFrequency(1) // one cycle per 100 samples
	first := o.Generate()
	if first != -1 {
		t.Fatalf("saw at phase 0 = %f, want -1", first)
	}
	for i := 1; i < 50; i++ {
		o.Generate()
	}
	mid := o.Generate()
	if math.Abs(float64(mid)) > 1e-4 {
		t.Errorf("saw at phase 0.5 = %f, want ~0", mid)
	}
}

func TestSquareFollowsPulseWidth(t *testing.T) {
	o := New(100)
	o.SetWaveform(Square)
	o.SetFrequency(1)
	o.SetPulseWidth(0.25)
	var high int
	for i := 0; i < 100; i++ {
		if o.Generate() > 0 {
			high++
		}
	}
	if high < 24 || high > 26 {
		t.Errorf("high samples = %d, want ~25 for 25%% duty", high)
	}
}

func TestTriangleQuarters(t *testing.T) {
	o := New(100)
	o.SetWaveform(Triangle)
	o.SetFrequency(1)
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = o.Generate()
	}
	checks := map[int]float64{0: 0, 25: 1, 50: 0, 75: -1}
	for idx, want := range checks {
		if math.Abs(float64(samples[idx])-want) > 1e-3 {
			t.Errorf("triangle[%d] = %f, want %f", idx, samples[idx], want)
		}
	}
}

func TestNoiseIsBoundedAndDeterministic(t *testing.T) {
	a := New(44100)
	b := New(44100)
	a.SetWaveform(Noise)
	b.SetWaveform(Noise)
	for i := 0; i < 10000; i++ {
		x, y := a.Generate(), b.Generate()
		if x != y {
			t.Fatalf("noise diverged at %d: %f != %f", i, x, y)
		}
		if x < -1 || x > 1 {
			t.Fatalf("noise out of range at %d: %f", i, x)
		}
	}
}

func TestPhaseWrapsIntoUnitInterval(t *testing.T) {
	o := New(44100)
	o.SetFrequency(12345)
	for i := 0; i < 5000; i++ {
		o.Generate()
		if p := o.Phase(); p < 0 || p >= 1 {
			t.Fatalf("phase %f escaped [0,1) at sample %d", p, i)
		}
	}
}

func TestWavetableWithoutBankIsSilent(t *testing.T) {
	o := New(44100)
	o.SetWaveform(Wavetable)
	if v := o.Generate(); v != 0 {
		t.Errorf("wavetable with no bank = %f, want 0", v)
	}
}

func TestWavetableSamplesBank(t *testing.T) {
	bank := wavetable.Default()
	o := New(256)
	o.SetWaveform(Wavetable)
	o.SetFrequency(1) // one table sample per step
	o.SetWavetable(bank, wavetable.PWM, 0)
	for i := 0; i < 256; i++ {
		got := o.Generate()
		want := bank.Sample(wavetable.PWM, 0, float32(i)/256)
		if math.Abs(float64(got-want)) > 1e-4 {
			t.Fatalf("sample %d = %f, want %f", i, got, want)
		}
	}
}
