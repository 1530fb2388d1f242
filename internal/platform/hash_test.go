package platform_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/platform"
)

func TestConstantTimeEqual(t *testing.T) {
	a := []byte("hello")
	b := []byte("hello")
	c := []byte("hellO")
	d := []byte("hell")

	if !platform.ConstantTimeEqual(a, b) {
		t.Fatal("expected equal byte slices to compare equal")
	}
	if platform.ConstantTimeEqual(a, c) {
		t.Fatal("expected differing byte slices to compare unequal")
	}
	if platform.ConstantTimeEqual(a, d) {
		t.Fatal("expected differing-length byte slices to compare unequal")
	}
}

func TestSha512ConcatMatchesManualConcat(t *testing.T) {
	got := platform.Sha512Concat([]byte("foo"), []byte("bar"))
	want := platform.Sha512([]byte("foobar"))
	if got != want {
		t.Fatalf("Sha512Concat diverged from manual concatenation")
	}
}

func TestRandomBytesLengthAndUniqueness(t *testing.T) {
	a, err := platform.RandomBytes(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(a))
	}
	b, _ := platform.RandomBytes(32)
	if platform.ConstantTimeEqual(a, b) {
		t.Fatal("two independent random draws should not collide")
	}
}

func TestNewUUIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := platform.NewUUID()
		if seen[id] {
			t.Fatalf("duplicate UUID generated: %s", id)
		}
		seen[id] = true
	}
}
