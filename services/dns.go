package services

import (
	"context"
	"log"
	"net"
)

// HostLookuper is the piece of net.Resolver the resolver needs;
// stubbed in tests.
type HostLookuper interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Resolver resolves hostnames to IPs with a cache-aside on the DNS
// cache kind.
type Resolver struct {
	cache  *Store
	lookup HostLookuper
}

// NewResolver builds a Resolver backed by the system resolver.
func NewResolver(cache *Store) *Resolver {
	return &Resolver{cache: cache, lookup: net.DefaultResolver}
}

// Resolve returns the first IP for hostname, consulting the DNS cache
// first. A cache-unavailable read degrades to a live lookup.
func (r *Resolver) Resolve(ctx context.Context, hostname string) (string, error) {
	ip, state := r.cache.GetDNS(hostname)
	if state == CacheHit {
		log.Printf("[DNS] cache hit: %s -> %s", hostname, ip)
		return ip, nil
	}
	if state == CacheUnavailable {
		log.Printf("[DNS] cache unavailable for %s, resolving live", hostname)
	}

	addrs, err := r.lookup.LookupHost(ctx, hostname)
	if err != nil || len(addrs) == 0 {
		if err == nil {
			err = &net.DNSError{Err: "no addresses returned", Name: hostname}
		}
		return "", &ResolutionError{Hostname: hostname, Err: err}
	}

	resolved := addrs[0]
	log.Printf("[DNS] resolved %s -> %s", hostname, resolved)
	if err := r.cache.PutDNS(hostname, resolved); err != nil {
		log.Printf("[DNS] failed to cache resolution for %s: %v", hostname, err)
	}
	return resolved, nil
}
