package api

import (
	"net"
	"regexp"
	"strings"
)

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// IsValidIP reports whether s is a literal IPv4 or IPv6 address.
func IsValidIP(s string) bool {
	return net.ParseIP(s) != nil
}

// IsValidHostname reports whether s is a plausible DNS hostname.
func IsValidHostname(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	return hostnameRegex.MatchString(s)
}

// IsValidIPOrHostname accepts either form; host lookups take both.
func IsValidIPOrHostname(s string) bool {
	return IsValidIP(s) || IsValidHostname(s)
}

// IsNotEmpty reports whether s contains anything besides whitespace.
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
