package timespec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// localLayouts are absolute formats without a zone, read in local time.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// dayOffset matches day and week offsets such as "3d", "+2w" or "-1d".
var dayOffset = regexp.MustCompile(`^([+-]?)(\d+)([dw])$`)

// Parse parses a time specification relative to now.
// Supports these formats:
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - Local date-times: "2025-10-29T13:00", "2025-10-29 13:00", "2025-10-29"
//   - Go duration format: "1h", "30m", "1h30m", optionally signed
//   - Day and week offsets: "3d", "+2w", "-1d"
//   - "now"
//
// Offsets are added to now, so "3d" means three days from now and "-1h"
// one hour ago.
func Parse(spec string, now time.Time) (time.Time, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}
	if strings.EqualFold(spec, "now") {
		return now, nil
	}

	// Try parsing as RFC3339 first
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, spec, time.Local); err == nil {
			return t, nil
		}
	}

	if m := dayOffset.FindStringSubmatch(spec); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %s: %w", spec, err)
		}
		days := n
		if m[3] == "w" {
			days = n * 7
		}
		if m[1] == "-" {
			days = -days
		}
		return now.AddDate(0, 0, days), nil
	}

	// Try parsing as Go duration
	if d, err := time.ParseDuration(strings.TrimPrefix(spec, "+")); err == nil {
		return now.Add(d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use an offset like '3d' or '2h30m', or a date like '2025-10-29T13:00')", spec)
}

// ParseDue parses a card due date. "", "none" and "clear" remove the due
// date and return nil.
func ParseDue(spec string, now time.Time) (*time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "none", "clear":
		return nil, nil
	}
	t, err := Parse(spec, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseRange parses both --due-after and --due-before flags into a time
// range. Nil values indicate "no bound" for that end of the range.
//
// Validates that after < before if both are specified.
func ParseRange(after, before string, now time.Time) (*time.Time, *time.Time, error) {
	var afterT, beforeT *time.Time

	if after != "" {
		t, err := Parse(after, now)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --due-after: %w", err)
		}
		afterT = &t
	}

	if before != "" {
		t, err := Parse(before, now)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --due-before: %w", err)
		}
		beforeT = &t
	}

	// Validate range
	if afterT != nil && beforeT != nil && !afterT.Before(*beforeT) {
		return nil, nil, fmt.Errorf("--due-after must be before --due-before")
	}

	return afterT, beforeT, nil
}
