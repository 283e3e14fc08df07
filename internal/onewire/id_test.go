package onewire

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TokenID
	}{
		{
			name:  "iButton fob",
			input: "33-00000392c6ea",
			want:  TokenID{0x33, 0x00, 0x00, 0x03, 0x92, 0xc6, 0xea},
		},
		{
			name:  "uppercase hex",
			input: "01-0000139BE2AB",
			want:  TokenID{0x01, 0x00, 0x00, 0x13, 0x9b, 0xe2, 0xab},
		},
		{
			name:  "single digit family",
			input: "3-00000392c6ea",
			want:  TokenID{0x03, 0x00, 0x00, 0x03, 0x92, 0xc6, 0xea},
		},
		{
			name:  "serial longer than twelve digits keeps the first twelve",
			input: "33-00000392c6eaff01",
			want:  TokenID{0x33, 0x00, 0x00, 0x03, 0x92, 0xc6, 0xea},
		},
		{
			name:  "trailing non-hex beyond twelve digits is ignored",
			input: "33-00000392c6ea ",
			want:  TokenID{0x33, 0x00, 0x00, 0x03, 0x92, 0xc6, 0xea},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if err != nil {
				t.Fatalf("ParseID(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIDErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "no separator",
			input:   "3300000392c6ea",
			wantErr: ErrBadFormat,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrBadFormat,
		},
		{
			name:    "non-hex family",
			input:   "zz-00000392c6ea",
			wantErr: ErrBadHex,
		},
		{
			name:    "family wider than one byte",
			input:   "333-00000392c6ea",
			wantErr: ErrBadHex,
		},
		{
			name:    "empty family",
			input:   "-00000392c6ea",
			wantErr: ErrBadHex,
		},
		{
			name:    "serial too short",
			input:   "33-0392c6ea",
			wantErr: ErrBadHex,
		},
		{
			name:    "non-hex serial",
			input:   "33-00000392c6eg",
			wantErr: ErrBadHex,
		},
		{
			name:    "empty serial",
			input:   "33-",
			wantErr: ErrBadHex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseID(tt.input)
			if err == nil {
				t.Fatalf("ParseID(%q) succeeded, want error", tt.input)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestTokenIDString(t *testing.T) {
	tests := []struct {
		name string
		id   TokenID
		want string
	}{
		{
			name: "fob",
			id:   TokenID{0x33, 0x00, 0x00, 0x03, 0x92, 0xc6, 0xea},
			want: "33-00000392c6ea",
		},
		{
			name: "zero value",
			id:   TokenID{},
			want: "00-000000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIDRoundTrip(t *testing.T) {
	const text = "33-00000392c6ea"

	id, err := ParseID(text)
	if err != nil {
		t.Fatalf("ParseID(%q) returned error: %v", text, err)
	}
	if got := id.String(); got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}
