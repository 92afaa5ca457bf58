package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Encoding names one message format posted to the opener
type Encoding string

const (
	// EncodingString posts "authorization:<provider>:<type>:<payload>"
	EncodingString Encoding = "string"

	// EncodingObject posts {provider, type, token}
	EncodingObject Encoding = "object"
)

// DefaultProvider is the provider name the CMS expects in every message
const DefaultProvider = "github"

// Burst timing defaults
const (
	DefaultInterval   = 300 * time.Millisecond
	DefaultDuration   = 8 * time.Second
	DefaultCloseDelay = 400 * time.Millisecond
)

var (
	// ErrUnknownEncoding indicates an encoding name that is not supported
	ErrUnknownEncoding = errors.New("unknown delivery encoding")

	// ErrNoEncodings indicates that no message format was configured
	ErrNoEncodings = errors.New("at least one delivery encoding is required")
)

// Options controls how the relay page delivers an outcome
type Options struct {
	Provider   string
	Encodings  []Encoding
	Interval   time.Duration // delay between repeated posts
	Duration   time.Duration // total length of the repeat burst
	CloseDelay time.Duration // grace period before the popup closes itself
	KeepOpen   bool          // leave the popup open for inspection
}

// DefaultOptions returns options matching what current CMS releases expect
func DefaultOptions() Options {
	return Options{
		Provider:   DefaultProvider,
		Encodings:  []Encoding{EncodingString, EncodingObject},
		Interval:   DefaultInterval,
		Duration:   DefaultDuration,
		CloseDelay: DefaultCloseDelay,
	}
}

// Validate checks that options can produce a working relay page
func (o Options) Validate() error {
	if o.Provider == "" {
		return fmt.Errorf("provider name is required")
	}
	if len(o.Encodings) == 0 {
		return ErrNoEncodings
	}
	for _, enc := range o.Encodings {
		if enc != EncodingString && enc != EncodingObject {
			return fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
		}
	}
	if o.Interval <= 0 {
		return fmt.Errorf("delivery interval must be positive, got %s", o.Interval)
	}
	if o.Duration < 0 {
		return fmt.Errorf("delivery duration must not be negative, got %s", o.Duration)
	}
	if o.CloseDelay < 0 {
		return fmt.Errorf("close delay must not be negative, got %s", o.CloseDelay)
	}
	return nil
}

// ParseEncodings converts configured names into encodings, dropping duplicates
// and preserving order
func ParseEncodings(names []string) ([]Encoding, error) {
	seen := make(map[Encoding]bool, len(names))
	encodings := make([]Encoding, 0, len(names))

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		enc := Encoding(name)
		if enc != EncodingString && enc != EncodingObject {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
		if seen[enc] {
			continue
		}
		seen[enc] = true
		encodings = append(encodings, enc)
	}

	if len(encodings) == 0 {
		return nil, ErrNoEncodings
	}
	return encodings, nil
}
