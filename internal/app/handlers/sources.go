package handlers

import (
	"net"
	"net/http"
	"strings"
)

// AddressSource extracts a raw, unnormalized address from a request, or ""
// when it has none.
type AddressSource func(*http.Request) string

// DefaultSources is the read-path resolution order: explicit query parameter,
// then the forwarding header, then the connection itself.
var DefaultSources = []AddressSource{FromQuery, FromForwardedFor, FromRemoteAddr}

func FromQuery(req *http.Request) string {
	return req.URL.Query().Get("ip")
}

// FromForwardedFor joins repeated X-Forwarded-For lines into one chain.
func FromForwardedFor(req *http.Request) string {
	return strings.Join(req.Header.Values("X-Forwarded-For"), ", ")
}

func FromRemoteAddr(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func resolveRawAddress(req *http.Request, sources []AddressSource) string {
	for _, source := range sources {
		if raw := source(req); raw != "" {
			return raw
		}
	}
	return ""
}
