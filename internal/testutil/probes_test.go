package testutil

import "testing"

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestDeterministicNoiseDifferentSeeds(t *testing.T) {
	a := DeterministicNoise(1, 1.0, 16)
	b := DeterministicNoise(2, 1.0, 16)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestUnit(t *testing.T) {
	u := Unit(4, 2)
	for i, v := range u {
		want := 0.0
		if i == 2 {
			want = 1
		}
		if v != want {
			t.Fatalf("Unit(4, 2)[%d] = %v, want %v", i, v, want)
		}
	}
	if z := Unit(3, 5); z[0] != 0 || z[1] != 0 || z[2] != 0 {
		t.Fatal("out-of-range position should give a zero vector")
	}
}

func TestOnes(t *testing.T) {
	for i, v := range Ones(5) {
		if v != 1 {
			t.Fatalf("Ones[%d] = %v", i, v)
		}
	}
}
