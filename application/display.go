package application

import (
	"context"
	"regexp"
	"strings"
)

// DisplayConfig is the fully-resolved presentation of one poll, threaded into
// the session at construction instead of read from ambient state.
type DisplayConfig struct {
	Color            string
	Description      string
	Footer           string
	ImageURL         string
	MaxSelectOptions int
}

// DisplayOverrides are the optional per-poll customization fields supplied on
// creation. Empty fields fall back to configured defaults.
type DisplayOverrides struct {
	ColorHex    string
	Description string
	Footer      string
	ImageURL    string
}

// DisplayTarget is the live message showing the poll. Implementations push to
// the chat platform.
type DisplayTarget interface {
	Update(ctx context.Context, t Tally) error
	Remove(ctx context.Context) error
}

var hexColorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// NormalizeHexColor turns "#RRGGBB", "0xRRGGBB" or "RRGGBBAA" input into
// "#rrggbb", dropping any alpha channel. Returns "" for anything else.
func NormalizeHexColor(input string) string {
	hex := strings.TrimSpace(input)
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 8 {
		hex = hex[:6]
	}
	if !hexColorPattern.MatchString(hex) {
		return ""
	}
	return "#" + strings.ToLower(hex)
}

// SplitTimes splits the raw comma-separated times field, trimming whitespace
// and dropping empty entries.
func SplitTimes(raw string) []string {
	var times []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			times = append(times, t)
		}
	}
	return times
}

// ClampMaxVotes caps a requested per-voter vote limit to
// min(max(1, requested), optionCount).
func ClampMaxVotes(requested, optionCount int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > optionCount {
		requested = optionCount
	}
	return requested
}
