package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseTTL(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30s", want: 30 * time.Second},
		{in: "15m", want: 15 * time.Minute},
		{in: "2h", want: 2 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "90", want: 90 * time.Second},
		{in: " 15M ", want: 15 * time.Minute},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-5m", wantErr: true},
		{in: "0s", wantErr: true},
		{in: "1.5h", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTTL(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidDuration) {
				t.Fatalf("ParseTTL(%q): expected ErrInvalidDuration, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTTL(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTTL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
