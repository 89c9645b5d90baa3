package utils

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"
)

// NewRecordID returns a unique record id "<prefix>-<unix-nano>", e.g.
// "project-1719848100000000000".
func NewRecordID(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "record"
	}
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// PlaceholderName derives a readable fallback name from a seed, used when
// a required-by-convention field was left empty. Shape: "<label> <hash>".
func PlaceholderName(label, seed string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Untitled"
	}
	return fmt.Sprintf("%s %s", label, ShortHashHex(seed))
}

// PlaceholderCode derives an uppercase identifier from a name, shaped like
// the codes the backend expects ("RIVERSIDE-PHASE-2" from the name, or
// "<prefix>-<hash>" when the name is empty).
func PlaceholderCode(prefix, name string) string {
	slug := SlugifyASCII(name)
	if slug == "" {
		return strings.ToUpper(fmt.Sprintf("%s-%s", strings.TrimSpace(prefix), ShortHashHex(prefix+time.Now().String())))
	}
	return strings.ToUpper(slug)
}

// ShortHashHex returns an 8-hex-digit FNV hash of s.
func ShortHashHex(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	sum := h.Sum64()
	return fmt.Sprintf("%08x", uint32(sum&0xffffffff))
}

// SlugifyASCII lowercases and collapses non-alphanumerics into dashes.
func SlugifyASCII(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// FormatRecordCode normalizes a user-supplied project code or case number
// to backend expectations: uppercase, spaces to hyphens, only
// alphanumerics, hyphens and underscores kept.
func FormatRecordCode(code string) string {
	formatted := strings.ToUpper(strings.TrimSpace(code))
	formatted = strings.ReplaceAll(formatted, " ", "-")
	var b strings.Builder
	for _, r := range formatted {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateRecordCode checks the shape of a project code or case number.
// Returns ok plus a message suitable for showing to the user.
func ValidateRecordCode(code string) (bool, string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, "code cannot be empty"
	}
	if len(code) > 100 {
		return false, "code must be 100 characters or less"
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-' && r != '_' && r != ' ' {
			return false, "code can only contain letters, numbers, hyphens, and underscores"
		}
	}
	return true, ""
}
