package platform

import (
	"testing"
)

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		expectOK      bool
		expectPercent float64
		expectStats   string
	}{
		{
			name:          "full progress line",
			line:          "[download]  42.5% of 10MiB at 1.2MiB/s ETA 00:07",
			expectOK:      true,
			expectPercent: 42.5,
			expectStats:   "Speed: 1.2MiB/s | ETA: 00:07 | Size: 10MiB",
		},
		{
			name:          "estimated size with fragments",
			line:          "[download]  12.0% of ~ 200.00MiB at  2.00MiB/s ETA 01:30 (frag 5/40)",
			expectOK:      true,
			expectPercent: 12,
			expectStats:   "Speed: 2.00MiB/s | ETA: 01:30 | Size: ~200.00MiB",
		},
		{
			name:          "finished line",
			line:          "[download] 100% of 10.00MiB in 00:00:05 at 2.00MiB/s",
			expectOK:      true,
			expectPercent: 100,
			expectStats:   "Speed: 2.00MiB/s | Size: 10.00MiB",
		},
		{
			name:          "percent only",
			line:          "[download]   3.1%",
			expectOK:      true,
			expectPercent: 3.1,
			expectStats:   "Downloading...",
		},
		{
			name:          "unknown eta",
			line:          "[download]  50.0% of 1GiB at Unknown B/s ETA Unknown",
			expectOK:      true,
			expectPercent: 50,
			expectStats:   "Speed: Unknown | ETA: Unknown | Size: 1GiB",
		},
		{
			name:     "no percent sign",
			line:     "[download] Destination: downloads/lecture-01.mp4",
			expectOK: false,
		},
		{
			name:     "non numeric percent",
			line:     "[download]  bad% of X",
			expectOK: false,
		},
		{
			name:     "nan percent",
			line:     "[download]  nan% of X",
			expectOK: false,
		},
		{
			name:     "percent without marker",
			line:     "[hlsnative] 42% done",
			expectOK: false,
		},
		{
			name:     "empty line",
			line:     "",
			expectOK: false,
		},
		{
			name:          "marker at end without next token",
			line:          "[download]  10% of",
			expectOK:      true,
			expectPercent: 10,
			expectStats:   "Downloading...",
		},
		{
			name:          "overflow is clamped",
			line:          "[download]  100.4% of 1MiB",
			expectOK:      true,
			expectPercent: 100,
			expectStats:   "Size: 1MiB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, ok := ParseProgress(tt.line)
			if ok != tt.expectOK {
				t.Fatalf("ParseProgress(%q) ok = %v, expected %v", tt.line, ok, tt.expectOK)
			}
			if !ok {
				return
			}
			if update.Percent != tt.expectPercent {
				t.Errorf("expected percent %v, got %v", tt.expectPercent, update.Percent)
			}
			if got := update.Stats.String(); got != tt.expectStats {
				t.Errorf("expected stats %q, got %q", tt.expectStats, got)
			}
		})
	}
}

func TestParseProgress_StatsFields(t *testing.T) {
	update, ok := ParseProgress("[download]  42.5% of 10MiB at 1.2MiB/s ETA 00:07")
	if !ok {
		t.Fatal("expected progress")
	}
	if update.Stats.Speed != "1.2MiB/s" {
		t.Errorf("expected speed 1.2MiB/s, got %q", update.Stats.Speed)
	}
	if update.Stats.ETA != "00:07" {
		t.Errorf("expected ETA 00:07, got %q", update.Stats.ETA)
	}
	if update.Stats.Size != "10MiB" {
		t.Errorf("expected size 10MiB, got %q", update.Stats.Size)
	}
}
