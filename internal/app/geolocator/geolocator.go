package geolocator

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Locator answers country lookups from a GeoLite2/GeoIP2 Country database.
// A nil *Locator is valid and knows nothing.
type Locator struct {
	reader *geoip2.Reader
}

// Open returns a nil Locator when path is empty.
func Open(path string) (*Locator, error) {
	if path == "" {
		return nil, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: error reading geoip database: %w", err)
	}
	return &Locator{reader: reader}, nil
}

// CountryISOCode returns "" for unknown or unparsable addresses.
func (l *Locator) CountryISOCode(ip string) (string, error) {
	if l == nil {
		return "", nil
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", nil
	}

	record, err := l.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("countryISOCode: %w", err)
	}
	return record.Country.IsoCode, nil
}

func (l *Locator) Close() error {
	if l == nil {
		return nil
	}
	return l.reader.Close()
}
