package delivery

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wrale/decap-oauth-proxy/internal/validation"
)

func TestFailure(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   Outcome
	}{
		{
			name:   "reason kept",
			reason: "bad_verification_code",
			want:   Outcome{Type: TypeError, Payload: "bad_verification_code"},
		},
		{
			name:   "empty reason",
			reason: "",
			want:   Outcome{Type: TypeError, Payload: ReasonUnknownError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Failure(tt.reason)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Failure() mismatch (-want +got):\n%s", diff)
			}
			if got.OK() {
				t.Error("Failure().OK() = true, want false")
			}
		})
	}
}

func TestStringMessage(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{outcome: Success("tok_xyz"), want: "authorization:github:success:tok_xyz"},
		{outcome: Failure(ReasonMissingCode), want: "authorization:github:error:missing_code"},
		{outcome: Success("a:b:c"), want: "authorization:github:success:a:b:c"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := StringMessage("github", tt.outcome); got != tt.want {
				t.Errorf("StringMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEncodings(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []Encoding
		wantErr error
	}{
		{
			name:  "both",
			input: []string{"string", "object"},
			want:  []Encoding{EncodingString, EncodingObject},
		},
		{
			name:  "order and duplicates",
			input: []string{" Object", "string", "object", ""},
			want:  []Encoding{EncodingObject, EncodingString},
		},
		{
			name:    "unknown",
			input:   []string{"string", "xml"},
			wantErr: ErrUnknownEncoding,
		},
		{
			name:    "empty",
			input:   []string{" "},
			wantErr: ErrNoEncodings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEncodings(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseEncodings() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEncodings() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseEncodings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Options) {}},
		{name: "no provider", modify: func(o *Options) { o.Provider = "" }, wantErr: true},
		{name: "no encodings", modify: func(o *Options) { o.Encodings = nil }, wantErr: true},
		{name: "bad encoding", modify: func(o *Options) { o.Encodings = []Encoding{"xml"} }, wantErr: true},
		{name: "zero interval", modify: func(o *Options) { o.Interval = 0 }, wantErr: true},
		{name: "negative duration", modify: func(o *Options) { o.Duration = -time.Second }, wantErr: true},
		{name: "no burst", modify: func(o *Options) { o.Duration = 0 }},
		{name: "negative close delay", modify: func(o *Options) { o.CloseDelay = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPlan(t *testing.T) {
	site := &validation.Site{Scheme: "https", Host: "example.com"}

	tests := []struct {
		name    string
		opts    func() Options
		outcome Outcome
		site    *validation.Site
		want    Plan
	}{
		{
			name:    "success with site and both encodings",
			opts:    DefaultOptions,
			outcome: Success("tok_xyz"),
			site:    site,
			want: Plan{
				Outcome: Success("tok_xyz"),
				Display: "authorization:github:success:tok_xyz",
				Messages: []any{
					"authorization:github:success:tok_xyz",
					ObjectMessage{Provider: "github", Type: "success", Token: "tok_xyz"},
				},
				TargetOrigin: "https://example.com",
				FallbackURL:  "https://example.com/admin/#/oauth?token=tok_xyz",
				IntervalMS:   300,
				DurationMS:   8000,
				CloseDelayMS: 400,
			},
		},
		{
			name:    "failure without site",
			outcome: Failure(ReasonMissingCode),
			opts: func() Options {
				o := DefaultOptions()
				o.Encodings = []Encoding{EncodingString}
				o.KeepOpen = true
				return o
			},
			want: Plan{
				Outcome:      Failure(ReasonMissingCode),
				Display:      "authorization:github:error:missing_code",
				Messages:     []any{"authorization:github:error:missing_code"},
				TargetOrigin: AnyOrigin,
				IntervalMS:   300,
				DurationMS:   8000,
				CloseDelayMS: 400,
				KeepOpen:     true,
			},
		},
		{
			name:    "object only failure with site",
			outcome: Failure("The code passed is incorrect or expired."),
			site:    site,
			opts: func() Options {
				o := DefaultOptions()
				o.Encodings = []Encoding{EncodingObject}
				return o
			},
			want: Plan{
				Outcome: Failure("The code passed is incorrect or expired."),
				Display: "authorization:github:error:The code passed is incorrect or expired.",
				Messages: []any{
					ObjectMessage{Provider: "github", Type: "error", Token: "The code passed is incorrect or expired."},
				},
				TargetOrigin: "https://example.com",
				FallbackURL:  "https://example.com/admin/#/oauth?error=The+code+passed+is+incorrect+or+expired.",
				IntervalMS:   300,
				DurationMS:   8000,
				CloseDelayMS: 400,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPlan(tt.opts(), tt.outcome, tt.site)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NewPlan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFallbackURL_EscapesPayload(t *testing.T) {
	site := validation.Site{Scheme: "http", Host: "localhost:1313"}

	got := FallbackURL(site, Success("a&b=c#d"))
	want := "http://localhost:1313/admin/#/oauth?token=a%26b%3Dc%23d"
	if got != want {
		t.Errorf("FallbackURL() = %q, want %q", got, want)
	}
}
