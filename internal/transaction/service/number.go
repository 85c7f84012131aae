package service

import (
	"fmt"
	"io"
	"sync"

	"github.com/kasirhq/kasira/internal/clock"
	"github.com/oklog/ulid/v2"
)

const numberTimeLayout = "20060102150405"

// NumberGenerator produces human-readable document numbers of the form
// PREFIX + UTC timestamp + 4-character random suffix. Collisions within the
// same second are possible but negligible; the caller retries once on a
// unique-constraint violation.
type NumberGenerator struct {
	clock   clock.Clock
	mu      sync.Mutex
	entropy io.Reader
}

// NewNumberGenerator builds a generator backed by ULID entropy.
func NewNumberGenerator(clk clock.Clock) *NumberGenerator {
	return &NumberGenerator{
		clock:   clk,
		entropy: ulid.DefaultEntropy(),
	}
}

// NewNumberGeneratorWithEntropy allows tests to inject a deterministic
// entropy source.
func NewNumberGeneratorWithEntropy(clk clock.Clock, entropy io.Reader) *NumberGenerator {
	return &NumberGenerator{
		clock:   clk,
		entropy: entropy,
	}
}

// Next derives the next document number for the given prefix.
func (g *NumberGenerator) Next(prefix string) string {
	now := g.clock.Now().UTC()

	g.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), g.entropy)
	g.mu.Unlock()

	encoded := id.String()
	suffix := encoded[len(encoded)-4:]

	return fmt.Sprintf("%s%s%s", prefix, now.Format(numberTimeLayout), suffix)
}
