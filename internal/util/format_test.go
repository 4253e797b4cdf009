package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0:00"},
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61*time.Second + 900*time.Millisecond, "1:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHz(t *testing.T) {
	tests := []struct {
		hz   float64
		want string
	}{
		{20, "20 Hz"},
		{440, "440 Hz"},
		{16000, "16.0 kHz"},
		{2500, "2.5 kHz"},
	}
	for _, tt := range tests {
		if got := FormatHz(tt.hz); got != tt.want {
			t.Errorf("FormatHz(%v) = %q, want %q", tt.hz, got, tt.want)
		}
	}
}
