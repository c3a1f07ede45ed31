package logging

import (
	"fmt"
	"math/rand"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var adjectives = []string{
	"amber", "brisk", "calm", "clever", "crisp", "daring", "eager", "fancy", "gentle",
	"golden", "happy", "jolly", "keen", "lively", "lucky", "mellow", "nimble", "proud",
	"quick", "quiet", "rapid", "shiny", "steady", "sunny", "swift", "tidy", "vivid",
	"warm", "witty", "zesty",
}

var nouns = []string{
	"anchor", "beacon", "bridge", "canyon", "comet", "delta", "ember", "falcon", "forge",
	"glacier", "harbor", "island", "lantern", "meadow", "nebula", "orbit", "pier",
	"quarry", "rocket", "summit", "tundra", "valley", "voyage", "willow", "zenith",
}

const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewRunID returns an ID like "swift-harbor-x3k9q2" that tags every log line
// of one invocation.
func NewRunID() (string, error) {
	suffix, err := gonanoid.Generate(runIDAlphabet, 6)
	if err != nil {
		return "", fmt.Errorf("failed to generate run id: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s",
		adjectives[rand.Intn(len(adjectives))],
		nouns[rand.Intn(len(nouns))],
		suffix,
	), nil
}
