/*
Package identity contains anonymous identity assignment for chat participants.

This file defines client id generation and the username generator, which draws
display names from a fixed adjective-noun-number combination space and
guarantees the result is absent from the caller-supplied set of names in use.
*/
package identity

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"chatrelay/internal/pkg/errs"
)

// maxAttempts bounds the username retry loop. The combination space is large
// relative to concurrent users, so hitting this limit signals a systemic
// problem rather than bad luck.
const maxAttempts = 1000

// defaultMaxSuffix is the exclusive upper bound of the numeric username suffix.
const defaultMaxSuffix = 10

var adjectives = []string{
	"Red", "Blue", "Green", "Amber", "Violet", "Crimson", "Golden", "Silver",
	"Teal", "Coral", "Ivory", "Jade", "Ruby", "Scarlet", "Azure", "Copper",
	"Misty", "Sunny", "Frosty", "Stormy", "Lunar", "Polar", "Dusty", "Mellow",
	"Swift", "Quiet", "Brave", "Sly", "Witty", "Gentle", "Rowdy", "Sleepy",
}

var nouns = []string{
	"Dog", "Cat", "Fox", "Owl", "Bear", "Wolf", "Hawk", "Lynx",
	"Otter", "Crane", "Heron", "Mole", "Hare", "Toad", "Newt", "Crow",
	"Finch", "Raven", "Stoat", "Seal", "Orca", "Moose", "Bison", "Gecko",
	"Badger", "Falcon", "Puffin", "Walrus", "Marmot", "Osprey", "Shrew", "Wren",
}

// NewClientID generates a statistically-unique opaque client identifier
// (UUID v4). Caller-supplied ids are accepted as-is elsewhere; no uniqueness
// check against live connections is needed here.
func NewClientID() string {
	return uuid.New().String()
}

// Generator produces display usernames of the form "Adjective Noun N".
// It is a pure draw over the combination space: the caller passes a snapshot
// of the names currently in use, so the generator itself holds no locks and
// no registry reference.
type Generator struct {
	adjectives []string
	nouns      []string
	maxSuffix  int
}

// NewGenerator returns a Generator over the default word lists.
func NewGenerator() *Generator {
	return &Generator{
		adjectives: adjectives,
		nouns:      nouns,
		maxSuffix:  defaultMaxSuffix,
	}
}

// Generate returns a username absent from the existing set, retrying up to
// maxAttempts draws before failing with ErrIdentityExhausted.
func (g *Generator) Generate(existing map[string]struct{}) (string, *errs.CustomError) {
	for i := 0; i < maxAttempts; i++ {
		adj := g.adjectives[rand.Intn(len(g.adjectives))]
		noun := g.nouns[rand.Intn(len(g.nouns))]
		name := fmt.Sprintf("%s %s %d", adj, noun, 1+rand.Intn(g.maxSuffix-1))

		if _, taken := existing[name]; !taken {
			return name, nil
		}
	}

	return "", errs.NewError(errs.ErrIdentityExhausted)
}

// SpaceSize returns the number of distinct usernames the generator can produce.
func (g *Generator) SpaceSize() int {
	return len(g.adjectives) * len(g.nouns) * (g.maxSuffix - 1)
}
