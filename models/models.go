package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// NoDataSentinel replaces missing org/ISP/location fields in upstream
// documents so the frontend never renders an empty cell.
const NoDataSentinel = "No disponible"

// ========================
// CACHE ROWS
// ========================

// SearchCacheEntry is one cached Shodan search page. At most one live
// row exists per (query, page) pair; writes go through an upsert.
type SearchCacheEntry struct {
	ID        uint   `gorm:"primarykey"`
	Query     string `gorm:"uniqueIndex:idx_query_page;not null"`
	Page      int    `gorm:"uniqueIndex:idx_query_page;not null"`
	Results   string `gorm:"not null"` // JSON-encoded []SearchMatch
	Total     int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time `gorm:"index;not null"`
}

// HostCacheEntry is one cached, already-enriched host record keyed by IP.
type HostCacheEntry struct {
	ID        uint   `gorm:"primarykey"`
	IP        string `gorm:"uniqueIndex;not null"`
	Data      string `gorm:"not null"` // JSON-encoded HostRecord
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time `gorm:"index;not null"`
}

// DNSCacheEntry is one cached hostname→IP resolution.
type DNSCacheEntry struct {
	ID        uint   `gorm:"primarykey"`
	Hostname  string `gorm:"uniqueIndex;not null"`
	IP        string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time `gorm:"index;not null"`
}

// Favorite is a host a user bookmarked, with a free-form alias and notes.
type Favorite struct {
	gorm.Model
	IP    string   `gorm:"uniqueIndex;not null" json:"ip"`
	Alias string   `gorm:"not null" json:"alias"`
	Notes string   `json:"notes"`
	Tags  []string `gorm:"serializer:json" json:"tags"`
}

// ========================
// SEARCH RESULTS
// ========================

// SearchMatch is the normalized shape of one Shodan search hit.
type SearchMatch struct {
	IPStr       string   `json:"ip_str"`
	Port        int      `json:"port"`
	Org         string   `json:"org"`
	CountryName string   `json:"country_name"`
	Hostnames   []string `json:"hostnames"`
}

// SearchPage is one page of normalized matches plus the upstream total.
type SearchPage struct {
	Matches []SearchMatch `json:"matches"`
	Total   int           `json:"total"`
}

// ========================
// ENRICHED HOST RECORD
// ========================

// HostRecord is the full enriched host document served to clients and
// stored in the host cache. Built once by the enricher; cache hits
// return it verbatim.
type HostRecord struct {
	IP               string              `json:"ip"`
	Org              string              `json:"org"`
	ISP              string              `json:"isp"`
	Hostnames        []string            `json:"hostnames"`
	Domains          []string            `json:"domains"`
	Geo              GeoInfo             `json:"geo"`
	LastUpdate       string              `json:"last_update,omitempty"`
	Summary          HostSummary         `json:"summary"`
	Services         []NormalizedService `json:"services"`
	Vulns            []string            `json:"vulns"`
	OriginalHostname string              `json:"original_hostname,omitempty"`
}

type GeoInfo struct {
	Country string   `json:"country"`
	City    string   `json:"city"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// HostSummary is the derived risk/exposure view of a host.
type HostSummary struct {
	OpenPortsCount int              `json:"open_ports_count"`
	OpenPorts      []int            `json:"open_ports"`
	TopService     string           `json:"top_service"`
	WebStack       string           `json:"web_stack,omitempty"`
	TLSSummary     *TLSSummary      `json:"tls_summary,omitempty"`
	ProviderHint   string           `json:"provider_hint,omitempty"`
	Badges         []string         `json:"badges"`
	RiskScore      int              `json:"risk_score"`
	ExposureFlags  []string         `json:"exposure_flags"`
	PortBuckets    map[string][]int `json:"port_buckets"`
}

type TLSSummary struct {
	ServicesCount int      `json:"services_count"`
	CommonCiphers []string `json:"common_ciphers"`
}

// NormalizedService is the stable internal shape of one upstream
// service banner.
type NormalizedService struct {
	Port        int       `json:"port"`
	Transport   string    `json:"transport"`
	Service     string    `json:"service"`
	Product     string    `json:"product,omitempty"`
	Version     string    `json:"version,omitempty"`
	CPE         []string  `json:"cpe"`
	Fingerprint *int64    `json:"fingerprints"`
	HTTP        *HTTPInfo `json:"http"`
	SSL         *SSLInfo  `json:"ssl"`
	RawTags     []string  `json:"raw_tags"`
}

type HTTPInfo struct {
	Server    string            `json:"server,omitempty"`
	Title     string            `json:"title"`
	Status    int               `json:"status,omitempty"`
	Redirects []json.RawMessage `json:"redirects"`
	Headers   map[string]string `json:"headers"`
}

type SSLInfo struct {
	Cert     json.RawMessage `json:"cert,omitempty"`
	Cipher   string          `json:"cipher,omitempty"`
	Versions []string        `json:"versions"`
}

// ========================
// CACHE ADMIN PAYLOADS
// ========================

// CacheKindStats is the live view of one cache kind. Expired is
// computed from timestamps at call time, not from a counter, because
// lazy expiry may not have fired yet.
type CacheKindStats struct {
	Total   int64 `json:"total"`
	Expired int64 `json:"expired"`
	Active  int64 `json:"active"`
}

// CacheStats groups per-kind stats.
type CacheStats struct {
	Searches CacheKindStats `json:"searches"`
	Hosts    CacheKindStats `json:"hosts"`
	DNS      CacheKindStats `json:"dns"`
}

// SweepResult reports how many rows a sweep or clear deleted per kind.
type SweepResult struct {
	Searches int64 `json:"searches_deleted"`
	Hosts    int64 `json:"hosts_deleted"`
	DNS      int64 `json:"dns_deleted"`
}

// ========================
// API REQUEST PAYLOADS
// ========================

type CreateFavoriteRequest struct {
	IP    string   `json:"ip" binding:"required"`
	Alias string   `json:"alias" binding:"required"`
	Notes string   `json:"notes"`
	Tags  []string `json:"tags"`
}

// UpdateFavoriteRequest carries a PATCH body; nil fields are left
// untouched.
type UpdateFavoriteRequest struct {
	IP    *string   `json:"ip"`
	Alias *string   `json:"alias"`
	Notes *string   `json:"notes"`
	Tags  *[]string `json:"tags"`
}
