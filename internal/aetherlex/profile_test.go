package aetherlex_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/aetherlex"
)

func TestGeneratePhraseSatisfiesDefaultProfile(t *testing.T) {
	profile := aetherlex.DefaultProfile()
	phrase, err := aetherlex.GeneratePhrase(profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := aetherlex.ParsePhrase(phrase)
	if err != nil {
		t.Fatalf("generated phrase failed to parse: %v", err)
	}
	if violations := profile.Violations(parsed); len(violations) != 0 {
		t.Fatalf("generated phrase violates its own profile: %v", violations)
	}
}

func TestViolationsFlagsShortPhrase(t *testing.T) {
	profile := aetherlex.DefaultProfile()
	shortParsed, err := aetherlex.ParsePhrase(aetherlex.ByteToToken(aetherlex.TongueKO, 0).Text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Satisfies(shortParsed) {
		t.Fatal("expected a single-token phrase to violate the default profile")
	}
}

func TestViolationsFlagsMissingTongue(t *testing.T) {
	profile := aetherlex.Profile{
		Name:           "ko-and-ru-only",
		MinPerTongue:   map[aetherlex.Tongue]int{aetherlex.TongueKO: 1, aetherlex.TongueRU: 1},
		MinTotalTokens: 2,
		MinEntropyBits: 0,
	}
	koOnly := aetherlex.ByteToToken(aetherlex.TongueKO, 0).Text + " " + aetherlex.ByteToToken(aetherlex.TongueKO, 1).Text
	parsed, err := aetherlex.ParsePhrase(koOnly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	violations := profile.Violations(parsed)
	if len(violations) == 0 {
		t.Fatal("expected a violation for the missing RU tongue")
	}
}
