package email

import (
	"strings"
)

// Normalize trims surrounding whitespace. Case is preserved: the remote API receives
// the address exactly as the user typed it.
func Normalize(addr string) string {
	return strings.TrimSpace(addr)
}

// Domain returns the part after the last '@', lower-cased, or "" when there is none.
func Domain(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}

// Mask hides the local part for logging: "jane.doe@example.com" -> "j***@example.com".
func Mask(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		if addr == "" {
			return ""
		}
		return "***"
	}

	runes := []rune(addr[:at])
	return string(runes[0]) + "***" + addr[at:]
}

// SameAddress compares two addresses the way hosts usually do: the domain is
// case-insensitive, the local part is compared as typed.
func SameAddress(a, b string) bool {
	a, b = Normalize(a), Normalize(b)
	ai, bi := strings.LastIndexByte(a, '@'), strings.LastIndexByte(b, '@')
	if ai < 0 || bi < 0 {
		return a == b
	}
	return a[:ai] == b[:bi] && strings.EqualFold(a[ai:], b[bi:])
}
