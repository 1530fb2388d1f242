package governance_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/governance"
)

func TestCreateImmutableLawsVerifies(t *testing.T) {
	laws := governance.CreateImmutableLaws(
		"mmx-v1",
		"poincare-ball-3d",
		[]string{"KO", "AV", "RU", "CA", "UM", "DR"},
		map[string]string{"replay": "fail-closed"},
	)
	if !governance.VerifyImmutableLawsHash(laws) {
		t.Fatal("expected freshly constructed laws to verify")
	}
}

func TestMutatingLawsFieldInvalidatesHash(t *testing.T) {
	laws := governance.CreateImmutableLaws(
		"mmx-v1",
		"poincare-ball-3d",
		[]string{"KO", "AV", "RU", "CA", "UM", "DR"},
		map[string]string{"replay": "fail-closed"},
	)

	mutated := laws
	mutated.GeometryModel = "euclidean"
	if governance.VerifyImmutableLawsHash(mutated) {
		t.Fatal("expected mutating a field to invalidate the laws hash")
	}

	mutated2 := laws
	mutated2.TonguesSet = append([]string{}, laws.TonguesSet...)
	mutated2.TonguesSet[0] = "ZZ"
	if governance.VerifyImmutableLawsHash(mutated2) {
		t.Fatal("expected mutating tongues_set to invalidate the laws hash")
	}
}

func TestCorruptedLawsHashFailsVerification(t *testing.T) {
	laws := governance.CreateImmutableLaws("mmx-v1", "poincare-ball-3d", []string{"KO"}, nil)
	laws.LawsHash[0] ^= 0xFF
	if governance.VerifyImmutableLawsHash(laws) {
		t.Fatal("expected a corrupted laws_hash byte to fail verification")
	}
}
