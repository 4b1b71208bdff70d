package services

import (
	"context"
	"log"
	"net"
	"strings"

	"github.com/echord/echord-backend/models"
)

// Gateway is the upstream API surface the orchestrator depends on;
// ShodanClient implements it, tests stub it.
type Gateway interface {
	SearchHosts(ctx context.Context, query string, page int) (*SearchResponse, error)
	GetHost(ctx context.Context, ip string) (*RawHostDocument, error)
}

// HostnameResolver resolves a hostname to a single IP.
type HostnameResolver interface {
	Resolve(ctx context.Context, hostname string) (string, error)
}

// Orchestrator composes the cache store, the upstream gateway and the
// enricher behind the two entry points Search and HostInfo. Each call
// is one strict sequence: cache read, optional upstream call, optional
// enrichment, cache write. Concurrent misses for the same key are not
// deduplicated; the store's upsert makes the race last-writer-wins.
type Orchestrator struct {
	cache    *Store
	gateway  Gateway
	resolver HostnameResolver
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(cache *Store, gateway Gateway, resolver HostnameResolver) *Orchestrator {
	return &Orchestrator{cache: cache, gateway: gateway, resolver: resolver}
}

// Search returns one page of normalized matches for a Shodan query,
// serving from cache when a fresh entry exists. size only truncates
// the response; the cached page always holds the full upstream page.
func (o *Orchestrator) Search(ctx context.Context, query string, page, size int) (models.PaginatedResponse[models.SearchMatch], error) {
	var empty models.PaginatedResponse[models.SearchMatch]
	if strings.TrimSpace(query) == "" {
		return empty, NewValidationError("the q (query) parameter is required and cannot be empty")
	}

	page = models.ClampPage(page)
	size = models.ClampSize(size, 10)

	result, state := o.cache.GetSearch(query, page)
	if state == CacheHit {
		log.Printf("[SEARCH] cache hit for query=%q page=%d", query, page)
	} else {
		if state == CacheUnavailable {
			log.Printf("[SEARCH] cache unavailable for query=%q page=%d, degrading to miss", query, page)
		}

		resp, err := o.gateway.SearchHosts(ctx, query, page)
		if err != nil {
			return empty, err
		}
		result = normalizeSearch(resp)

		if err := o.cache.PutSearch(query, page, result); err != nil {
			log.Printf("[SEARCH] failed to cache query=%q page=%d: %v", query, page, err)
		}
		log.Printf("[SEARCH] fetched query=%q page=%d from upstream, total=%d", query, page, result.Total)
	}

	matches := result.Matches
	if len(matches) > size {
		matches = matches[:size]
	}
	return models.NewPaginatedResponse(matches, result.Total, page, size), nil
}

// HostInfo returns the enriched record for an IP or hostname. Hostname
// targets go through the DNS cache-aside first. Enrichment runs only
// on a cache miss; a hit returns the stored record verbatim.
func (o *Orchestrator) HostInfo(ctx context.Context, target string) (*models.HostRecord, error) {
	if strings.TrimSpace(target) == "" {
		return nil, NewValidationError("an IP address or hostname is required")
	}

	ip := target
	originalHostname := ""
	if net.ParseIP(target) == nil {
		resolved, err := o.resolver.Resolve(ctx, target)
		if err != nil {
			return nil, err
		}
		ip = resolved
		originalHostname = target
	}

	record, state := o.cache.GetHost(ip)
	if state == CacheHit {
		log.Printf("[HOST] cache hit for ip=%s", ip)
	} else {
		if state == CacheUnavailable {
			log.Printf("[HOST] cache unavailable for ip=%s, degrading to miss", ip)
		}

		doc, err := o.gateway.GetHost(ctx, ip)
		if err != nil {
			return nil, err
		}
		record = EnrichHost(doc)

		if err := o.cache.PutHost(ip, record); err != nil {
			log.Printf("[HOST] failed to cache ip=%s: %v", ip, err)
		}
		log.Printf("[HOST] fetched ip=%s from upstream, %d open ports", ip, record.Summary.OpenPortsCount)
	}

	record.OriginalHostname = originalHostname
	return record, nil
}

// normalizeSearch reduces raw upstream matches to the stable shape,
// substituting sentinels for missing org/country.
func normalizeSearch(resp *SearchResponse) models.SearchPage {
	matches := make([]models.SearchMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		hostnames := m.Hostnames
		if hostnames == nil {
			hostnames = []string{}
		}
		matches = append(matches, models.SearchMatch{
			IPStr:       m.IPStr,
			Port:        m.Port,
			Org:         orDefault(m.Org),
			CountryName: orDefault(m.Location.CountryName),
			Hostnames:   hostnames,
		})
	}
	return models.SearchPage{Matches: matches, Total: resp.Total}
}
