package filter

import (
	"math"
	"testing"
)

const sr = 44100

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func TestStateStaysFiniteAcrossParameterGrid(t *testing.T) {
	inputs := map[string]func(i int) float32{
		"dc":      func(int) float32 { return 1 },
		"nyquist": func(i int) float32 { return float32(1 - 2*(i%2)) },
	}
	for name, in := range inputs {
		for c := 0; c <= 10; c++ {
			for _, res := range []float32{0, 0.5, 0.9, 0.99} {
				f := New(sr)
				f.SetCutoff(float32(c) / 10)
				f.SetResonance(res)
				for i := 0; i < 50000; i++ {
					f.Process(in(i))
				}
				low, high, band, notch := f.State()
				for _, v := range []float32{low, high, band, notch} {
					if !finite(v) || math.Abs(float64(v)) > 10 {
						t.Fatalf("%s cutoff=%.1f res=%.2f: state diverged (%f %f %f %f)",
							name, float32(c)/10, res, low, high, band, notch)
					}
				}
			}
		}
	}
}

func TestLowPassPassesDC(t *testing.T) {
	f := New(sr)
	f.SetCutoff(0.6)
	var out float32
	for i := 0; i < 20000; i++ {
		out = f.Process(1)
	}
	if math.Abs(float64(out)-1) > 1e-3 {
		t.Errorf("low-pass DC gain = %f, want 1", out)
	}
}

func TestHighPassBlocksDC(t *testing.T) {
	f := New(sr)
	f.SetKind(HighPass)
	f.SetCutoff(0.6)
	var out float32
	for i := 0; i < 20000; i++ {
		out = f.Process(1)
	}
	if math.Abs(float64(out)) > 1e-3 {
		t.Errorf("high-pass DC output = %f, want ~0", out)
	}
}

func TestCoefficientMapping(t *testing.T) {
	f := New(sr)
	f.SetCutoff(0)
	fc, _ := f.Coefficients()
	want := 2 * math.Sin(math.Pi*20/sr)
	if math.Abs(float64(fc)-want) > 1e-6 {
		t.Errorf("fc at cutoff 0 = %g, want %g", fc, want)
	}
	f.SetCutoff(1)
	if fc, _ = f.Coefficients(); fc != maxFC {
		t.Errorf("fc at cutoff 1 = %g, want clamp %g", fc, maxFC)
	}
	f.SetResonance(0.99)
	if _, q := f.Coefficients(); q != minQ {
		t.Errorf("q at resonance 0.99 = %g, want floor %g", q, minQ)
	}
	f.SetResonance(0.5)
	if _, q := f.Coefficients(); q != 0.5 {
		t.Errorf("q at resonance 0.5 = %g, want 0.5", q)
	}
}

func TestSettersClamp(t *testing.T) {
	f := New(sr)
	f.SetCutoff(-1)
	if f.Cutoff() != 0 {
		t.Errorf("cutoff = %f, want 0", f.Cutoff())
	}
	f.SetCutoff(3)
	if f.Cutoff() != 1 {
		t.Errorf("cutoff = %f, want 1", f.Cutoff())
	}
	f.SetResonance(2)
	if f.Resonance() != maxResonance {
		t.Errorf("resonance = %f, want %f", f.Resonance(), float32(maxResonance))
	}
}

func TestResetClearsState(t *testing.T) {
	f := New(sr)
	for i := 0; i < 100; i++ {
		f.Process(0.5)
	}
	f.Reset()
	low, high, band, notch := f.State()
	if low != 0 || high != 0 || band != 0 || notch != 0 {
		t.Fatal("reset should zero accumulators")
	}
}

func BenchmarkProcessModulatedCutoff(b *testing.B) {
	f := New(sr)
	f.SetResonance(0.7)
	for i := 0; i < b.N; i++ {
		f.SetCutoff(float32(i%1000) / 1000)
		f.Process(0.25)
	}
}
