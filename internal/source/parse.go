package source

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/khrees2412/linkfolio/internal/apperror"
)

// NormalizeRef turns a profile reference into a canonical profile URL.
// Accepted forms: a full profile URL, a "/in/<id>" path, or a bare
// public identifier.
func NormalizeRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", apperror.NewValidation("profile reference is empty")
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", apperror.NewValidation(fmt.Sprintf("invalid profile URL %q", ref))
		}
		if !strings.HasSuffix(u.Hostname(), "linkedin.com") {
			return "", apperror.NewValidation(fmt.Sprintf("%q is not a linkedin.com URL", ref))
		}
		if !strings.HasPrefix(u.Path, "/in/") {
			return "", apperror.NewValidation(fmt.Sprintf("%q is not a profile URL", ref))
		}
		return linkedinBase + "/in/" + strings.Trim(strings.TrimPrefix(u.Path, "/in/"), "/") + "/", nil
	}

	id := strings.Trim(strings.TrimPrefix(ref, "in/"), "/")
	if id == "" || strings.ContainsAny(id, " /?") {
		return "", apperror.NewValidation(fmt.Sprintf("invalid profile identifier %q", ref))
	}
	return linkedinBase + "/in/" + id + "/", nil
}

// SplitName splits a display name into first and last. Everything
// after the first word is the last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// dateLayouts are the formats LinkedIn renders dates in, in the order
// they should be tried.
var dateLayouts = []string{"Jan 2006", "January 2006", "2006"}

// ParseDate parses a single rendered date. "Present" and anything
// unparseable come back as the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "present") {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseDateRange parses a rendered range like "Jan 2020 - Present" or
// "2018 - 2021". A missing or "Present" end date yields a nil end,
// meaning the entry is ongoing.
func ParseDateRange(s string) (start time.Time, end *time.Time) {
	// Duration suffixes like "Jan 2020 - Present · 3 yrs" ride along
	// in the same element.
	if i := strings.Index(s, "·"); i >= 0 {
		s = s[:i]
	}

	parts := strings.SplitN(s, "-", 2)
	start = ParseDate(parts[0])
	if len(parts) == 2 {
		if t := ParseDate(parts[1]); !t.IsZero() {
			end = &t
		}
	}
	return start, end
}
