package services

import (
	"context"
	"errors"
	"testing"
)

type stubLookuper struct {
	calls int
	addrs []string
	err   error
}

func (l *stubLookuper) LookupHost(ctx context.Context, host string) ([]string, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.addrs, nil
}

func TestResolveMissLooksUpAndCaches(t *testing.T) {
	store := newTestStore(t)
	lookup := &stubLookuper{addrs: []string{"93.184.216.34", "93.184.216.35"}}
	r := &Resolver{cache: store, lookup: lookup}

	ip, err := r.Resolve(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ip != "93.184.216.34" {
		t.Errorf("ip = %q, want the first address", ip)
	}

	// Second call is served from the DNS cache.
	ip, err = r.Resolve(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if ip != "93.184.216.34" || lookup.calls != 1 {
		t.Errorf("ip=%q lookups=%d, want cached result and 1 lookup", ip, lookup.calls)
	}
}

func TestResolveFailureIsResolutionError(t *testing.T) {
	store := newTestStore(t)
	r := &Resolver{cache: store, lookup: &stubLookuper{err: errors.New("nxdomain")}}

	_, err := r.Resolve(context.Background(), "bad.example")
	var rErr *ResolutionError
	if !errors.As(err, &rErr) {
		t.Fatalf("got %v, want ResolutionError", err)
	}
	if rErr.Hostname != "bad.example" {
		t.Errorf("hostname = %q", rErr.Hostname)
	}

	// Failed resolutions are not cached.
	if _, state := store.GetDNS("bad.example"); state != CacheMiss {
		t.Errorf("cache state = %v, want miss", state)
	}
}

func TestResolveEmptyAnswerIsResolutionError(t *testing.T) {
	store := newTestStore(t)
	r := &Resolver{cache: store, lookup: &stubLookuper{addrs: []string{}}}

	_, err := r.Resolve(context.Background(), "empty.example")
	var rErr *ResolutionError
	if !errors.As(err, &rErr) {
		t.Fatalf("got %v, want ResolutionError", err)
	}
}
