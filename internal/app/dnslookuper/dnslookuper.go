package dnslookuper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

var ErrNoServers = errors.New("no nameservers configured")

type ResolverResponse struct {
	Name      string
	ExpiresAt time.Time
}

type Resolver struct {
	client *dns.Client
	server string
}

// NewFromResolvConf uses the first nameserver listed in path.
func NewFromResolvConf(path string, timeout time.Duration) (*Resolver, error) {
	config, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("newFromResolvConf: error reading %s: %w", path, err)
	}
	if len(config.Servers) == 0 {
		return nil, fmt.Errorf("newFromResolvConf: %s: %w", path, ErrNoServers)
	}
	return New(net.JoinHostPort(config.Servers[0], config.Port), timeout), nil
}

func New(server string, timeout time.Duration) *Resolver {
	return &Resolver{
		client: &dns.Client{Timeout: timeout},
		server: server,
	}
}

// ArpaName returns the in-addr.arpa or ip6.arpa name for ip, or "" if ip is
// not an IP address.
func ArpaName(ip string) string {
	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return ""
	}
	return arpa
}

// LookupPTR resolves the PTR records of ip with their TTL-based expiry.
func (r *Resolver) LookupPTR(ctx context.Context, ip string) ([]ResolverResponse, error) {
	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("lookupPTR: %w", err)
	}

	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)
	m.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, fmt.Errorf("lookupPTR: query for %s failed: %w", arpa, err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("lookupPTR: query for %s returned %s", arpa, dns.RcodeToString[resp.Rcode])
	}

	result := make([]ResolverResponse, 0, len(resp.Answer))
	for _, ans := range resp.Answer {
		if ptr, ok := ans.(*dns.PTR); ok {
			ttl := time.Duration(ptr.Header().Ttl) * time.Second
			result = append(result, ResolverResponse{Name: ptr.Ptr, ExpiresAt: time.Now().Add(ttl)})
		}
	}
	return result, nil
}
