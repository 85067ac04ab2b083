package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	mrand "math/rand"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"
)

// Logger interface for logging within the id package.
// This is a minimal interface that avoids circular dependencies.
type Logger interface {
	Warn(msg string, args ...any)
}

// Mode controls how IDs are generated when crypto/rand fails.
type Mode int

const (
	// ModeFallback uses math/rand/v2 when crypto/rand fails.
	ModeFallback Mode = iota

	// ModeStrict returns an error when crypto/rand fails.
	ModeStrict
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFallback:
		return "fallback"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

const (
	// ClickPrefix starts every click identifier.
	ClickPrefix = "click_"

	// SuffixLength is the number of random characters in a click identifier.
	SuffixLength = 9

	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// maxUnbiased is the largest multiple of len(alphabet) that fits in a byte.
	maxUnbiased = 252
)

// ErrRandomSource is returned by Generate in ModeStrict when the random
// source fails.
var ErrRandomSource = errors.New("id: random source failed")

var clickIDPattern = regexp.MustCompile(`^click_[0-9]+_[0-9a-z]+$`)

// cryptoFailures tracks crypto/rand failures for monitoring.
var cryptoFailures atomic.Int64

// Generator generates click identifiers.
type Generator struct {
	mode   Mode
	now    func() time.Time
	random io.Reader
	logger Logger
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	// Mode controls behavior when the random source fails.
	Mode Mode

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Random is the entropy source. Defaults to crypto/rand.Reader.
	Random io.Reader

	// Logger receives a warning the first time the fallback is used.
	Logger Logger
}

// NewGenerator creates a generator with the specified configuration.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	if cfg == nil {
		cfg = &GeneratorConfig{}
	}
	g := &Generator{
		mode:   cfg.Mode,
		now:    cfg.Now,
		random: cfg.Random,
		logger: cfg.Logger,
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.random == nil {
		g.random = rand.Reader
	}
	return g
}

// Generate returns a new click identifier.
// Returns an error only in ModeStrict when the random source fails.
func (g *Generator) Generate() (string, error) {
	ms := strconv.FormatInt(g.now().UnixMilli(), 10)

	suffix, err := g.cryptoSuffix()
	if err != nil {
		failures := cryptoFailures.Add(1)
		switch g.mode {
		case ModeStrict:
			return "", fmt.Errorf("%w (strict mode, %d total failures): %w", ErrRandomSource, failures, err)
		case ModeFallback:
			if failures == 1 && g.logger != nil {
				g.logger.Warn("random source failed, using fallback click id generation", "error", err)
			}
			suffix = fallbackSuffix()
		default:
			return "", fmt.Errorf("attribution: unknown id generation mode: %d", g.mode)
		}
	}

	return ClickPrefix + ms + "_" + suffix, nil
}

// MustGenerate generates an ID or panics on failure.
func (g *Generator) MustGenerate() string {
	id, err := g.Generate()
	if err != nil {
		panic(err)
	}
	return id
}

// cryptoSuffix draws SuffixLength characters by rejection sampling so every
// character of the alphabet is equally likely.
func (g *Generator) cryptoSuffix() (string, error) {
	out := make([]byte, 0, SuffixLength)
	buf := make([]byte, SuffixLength*2)
	for len(out) < SuffixLength {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == SuffixLength {
				break
			}
		}
	}
	return string(out), nil
}

func fallbackSuffix() string {
	out := make([]byte, SuffixLength)
	for i := range out {
		out[i] = alphabet[mrand.Intn(len(alphabet))]
	}
	return string(out)
}

// CryptoFailureCount returns the total number of random source failures.
func CryptoFailureCount() int64 {
	return cryptoFailures.Load()
}

// ResetCryptoFailureCount resets the failure counter (for testing).
func ResetCryptoFailureCount() {
	cryptoFailures.Store(0)
}

// defaultGenerator is the package-level generator, in fallback mode.
var defaultGenerator = NewGenerator(nil)

// NewClickID returns a click identifier from the default generator.
// It never fails.
func NewClickID() string {
	id, err := defaultGenerator.Generate()
	if err != nil {
		return ClickPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + fallbackSuffix()
	}
	return id
}

// IsClickID reports whether s has the click identifier form.
func IsClickID(s string) bool {
	return clickIDPattern.MatchString(s)
}
