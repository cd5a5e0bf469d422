package ipaddr

import (
	"slices"
	"strings"
)

const (
	ipv4MappedPrefix = "::ffff:"
	loopbackIPv6     = "::1"
)

type Dialect string

const (
	DialectEmpty  Dialect = "empty"
	DialectDotted Dialect = "dotted"
	DialectColon  Dialect = "colon"
	DialectOpaque Dialect = "opaque"
)

// Normalize turns a raw address (a forwarding chain or an IPv4-mapped IPv6
// literal) into a single address. The result is not validated.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	ip := raw
	if strings.Contains(ip, ",") {
		first, _, _ := strings.Cut(ip, ",")
		ip = strings.TrimSpace(first)
	}

	ip = strings.TrimPrefix(ip, ipv4MappedPrefix)

	if ip == loopbackIPv6 {
		return loopbackIPv6
	}
	return ip
}

func DialectOf(address string) Dialect {
	switch {
	case address == "":
		return DialectEmpty
	case strings.Contains(address, "."):
		return DialectDotted
	case strings.Contains(address, ":"):
		return DialectColon
	default:
		return DialectOpaque
	}
}

// Reverse returns the reversed textual form of address. Dotted input has its
// segments reversed, colon input has its non-empty groups reversed (so "::"
// elision is lost), anything else is reversed rune by rune.
func Reverse(address string) string {
	switch DialectOf(address) {
	case DialectDotted:
		parts := strings.Split(address, ".")
		slices.Reverse(parts)
		return strings.Join(parts, ".")
	case DialectColon:
		parts := slices.DeleteFunc(strings.Split(address, ":"), func(s string) bool {
			return s == ""
		})
		slices.Reverse(parts)
		return strings.Join(parts, ":")
	case DialectOpaque:
		runes := []rune(address)
		slices.Reverse(runes)
		return string(runes)
	default:
		return ""
	}
}
