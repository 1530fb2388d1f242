package aetherlex

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Profile enforces minimum counts per tongue, a minimum total token count,
// and a minimum entropy floor for a phrase to be considered acceptable.
type Profile struct {
	Name            string
	MinPerTongue    map[Tongue]int
	MinTotalTokens  int
	MinEntropyBits  float64
}

// DefaultProfile requires at least one token from every tongue, a 12-token
// minimum, and at least 128 bits of entropy — mirroring a conventional
// 12-word/128-bit mnemonic floor.
func DefaultProfile() Profile {
	minPerTongue := make(map[Tongue]int, len(TongueOrder))
	for _, t := range TongueOrder {
		minPerTongue[t] = 1
	}
	return Profile{
		Name:           "default",
		MinPerTongue:   minPerTongue,
		MinTotalTokens: 12,
		MinEntropyBits: 128,
	}
}

// Violations reports every way parsed fails to satisfy p. An empty result
// means the phrase satisfies the profile.
func (p Profile) Violations(parsed ParsedPhrase) []string {
	var violations []string

	if len(parsed.Tokens) < p.MinTotalTokens {
		violations = append(violations, fmt.Sprintf("phrase has %d tokens, profile %q requires at least %d", len(parsed.Tokens), p.Name, p.MinTotalTokens))
	}
	if parsed.EntropyBits < p.MinEntropyBits {
		violations = append(violations, fmt.Sprintf("phrase has %.2f entropy bits, profile %q requires at least %.2f", parsed.EntropyBits, p.Name, p.MinEntropyBits))
	}
	for tongue, min := range p.MinPerTongue {
		if parsed.CountByTongue[tongue] < min {
			violations = append(violations, fmt.Sprintf("tongue %s has %d tokens, profile %q requires at least %d", tongue, parsed.CountByTongue[tongue], p.Name, min))
		}
	}
	return violations
}

// Satisfies reports whether parsed meets every requirement of p.
func (p Profile) Satisfies(parsed ParsedPhrase) bool {
	return len(p.Violations(parsed)) == 0
}

// GeneratePhrase produces a phrase satisfying p using cryptographically
// secure randomness: it draws the profile-required minimum from each
// tongue first, then fills remaining slots uniformly at random across all
// tongues until both the token-count and entropy floors are met.
func GeneratePhrase(p Profile) (string, error) {
	var tokens []string

	for _, tongue := range TongueOrder {
		min := p.MinPerTongue[tongue]
		for i := 0; i < min; i++ {
			tok, err := randomTokenForTongue(tongue)
			if err != nil {
				return "", err
			}
			tokens = append(tokens, tok)
		}
	}

	for len(tokens) < p.MinTotalTokens || float64(len(tokens))*BitsPerToken < p.MinEntropyBits {
		tok, err := randomToken()
		if err != nil {
			return "", err
		}
		tokens = append(tokens, tok)
	}

	return strings.Join(tokens, " "), nil
}

func randomTokenForTongue(tongue Tongue) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(TokensPerTongue))
	if err != nil {
		return "", fmt.Errorf("aetherlex: draw random byte: %w", err)
	}
	return ByteToToken(tongue, byte(n.Int64())).Text, nil
}

func randomToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(TotalTokens))
	if err != nil {
		return "", fmt.Errorf("aetherlex: draw random token: %w", err)
	}
	idx := n.Int64()
	tongue := TongueOrder[idx/TokensPerTongue]
	value := byte(idx % TokensPerTongue)
	return ByteToToken(tongue, value).Text, nil
}
