package manager

import "time"

// Config holds the manager-creation options of spec.md §6, plus the
// obfuscation build constants of §4.6.1 (left as "build constant" by the
// distilled spec; exposed here as configurable defaults instead of
// hardcoded literals, matching the teacher's preference for explicit
// structs over magic numbers).
type Config struct {
	// Visibility is the font class's initial CSS visibility, "hidden" or
	// "visible".
	Visibility string
	// MaxVisibilityTimeout bounds how long the class may stay hidden.
	MaxVisibilityTimeout time.Duration
	// ReqSize caps codepoints sent to the backend per loadChars batch.
	ReqSize int
	// PersistData disables the persistent store entirely when false.
	PersistData bool
	// PersistDelay is the coalescing window before a dirty slot is
	// actually written.
	PersistDelay time.Duration
	// ObfuscationRange is the width of the uniform draw window around
	// each real code point during obfuscation.
	ObfuscationRange int
	// MinNonObfuscationLength is the minimum request size below which
	// obfuscation activates.
	MinNonObfuscationLength int
}

// DefaultConfig matches spec.md §6's defaults plus this module's choices
// for the two obfuscation constants the distilled spec leaves to the
// build tool.
func DefaultConfig() Config {
	return Config{
		Visibility:               "hidden",
		MaxVisibilityTimeout:     3000 * time.Millisecond,
		ReqSize:                  2200,
		PersistData:              true,
		PersistDelay:             1000 * time.Millisecond,
		ObfuscationRange:         256,
		MinNonObfuscationLength:  20,
	}
}

// Option mutates a Config during manager construction.
type Option func(*Config)

func WithVisibility(v string) Option { return func(c *Config) { c.Visibility = v } }

func WithMaxVisibilityTimeout(d time.Duration) Option {
	return func(c *Config) { c.MaxVisibilityTimeout = d }
}

func WithReqSize(n int) Option { return func(c *Config) { c.ReqSize = n } }

func WithPersistData(enabled bool) Option { return func(c *Config) { c.PersistData = enabled } }

func WithPersistDelay(d time.Duration) Option { return func(c *Config) { c.PersistDelay = d } }

func WithObfuscationRange(n int) Option { return func(c *Config) { c.ObfuscationRange = n } }

func WithMinNonObfuscationLength(n int) Option {
	return func(c *Config) { c.MinNonObfuscationLength = n }
}
