package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/echord/echord-backend/config"
	"github.com/echord/echord-backend/models"
)

// CacheState is the outcome of a cache read. Degrading on Unavailable
// is an explicit branch in the orchestrator, not a swallowed error:
// the cache is a performance optimization, never a correctness
// dependency.
type CacheState int

const (
	CacheHit CacheState = iota
	CacheMiss
	CacheUnavailable
)

func (s CacheState) String() string {
	switch s {
	case CacheHit:
		return "hit"
	case CacheMiss:
		return "miss"
	case CacheUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Store is the TTL cache over the three record kinds: search pages,
// enriched host records and DNS resolutions. Reads enforce expiry
// lazily (an expired row is deleted and reported as a miss); writes
// upsert, so at most one live row exists per key.
type Store struct {
	db        *gorm.DB
	searchTTL time.Duration
	hostTTL   time.Duration
	dnsTTL    time.Duration
	now       func() time.Time
}

// NewStore builds a Store with the TTLs from cfg.
func NewStore(gdb *gorm.DB, cfg config.Config) *Store {
	return &Store{
		db:        gdb,
		searchTTL: cfg.SearchTTL(),
		hostTTL:   cfg.HostTTL(),
		dnsTTL:    cfg.DNSTTL(),
		now:       time.Now,
	}
}

// GetSearch looks up a cached search page by (query, page).
func (s *Store) GetSearch(query string, page int) (models.SearchPage, CacheState) {
	var entry models.SearchCacheEntry
	err := s.db.Where("query = ? AND page = ?", query, page).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SearchPage{}, CacheMiss
	}
	if err != nil {
		log.Printf("[CACHE] search lookup failed for query=%q page=%d: %v", query, page, err)
		return models.SearchPage{}, CacheUnavailable
	}

	if !s.now().Before(entry.ExpiresAt) {
		log.Printf("[CACHE] search entry expired for query=%q page=%d, deleting", query, page)
		if err := s.db.Delete(&models.SearchCacheEntry{}, entry.ID).Error; err != nil {
			log.Printf("[CACHE] failed to delete expired search entry %d: %v", entry.ID, err)
		}
		return models.SearchPage{}, CacheMiss
	}

	var matches []models.SearchMatch
	if err := json.Unmarshal([]byte(entry.Results), &matches); err != nil {
		log.Printf("[CACHE] corrupt search entry for query=%q page=%d: %v", query, page, err)
		return models.SearchPage{}, CacheUnavailable
	}
	return models.SearchPage{Matches: matches, Total: entry.Total}, CacheHit
}

// PutSearch upserts a search page. On conflict only the value columns
// and expiry move; the row keeps its original CreatedAt.
func (s *Store) PutSearch(query string, page int, result models.SearchPage) error {
	raw, err := json.Marshal(result.Matches)
	if err != nil {
		return err
	}
	entry := models.SearchCacheEntry{
		Query:     query,
		Page:      page,
		Results:   string(raw),
		Total:     result.Total,
		ExpiresAt: s.now().Add(s.searchTTL),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}, {Name: "page"}},
		DoUpdates: clause.AssignmentColumns([]string{"results", "total", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// GetHost looks up a cached enriched host record by IP.
func (s *Store) GetHost(ip string) (*models.HostRecord, CacheState) {
	var entry models.HostCacheEntry
	err := s.db.Where("ip = ?", ip).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, CacheMiss
	}
	if err != nil {
		log.Printf("[CACHE] host lookup failed for ip=%s: %v", ip, err)
		return nil, CacheUnavailable
	}

	if !s.now().Before(entry.ExpiresAt) {
		log.Printf("[CACHE] host entry expired for ip=%s, deleting", ip)
		if err := s.db.Delete(&models.HostCacheEntry{}, entry.ID).Error; err != nil {
			log.Printf("[CACHE] failed to delete expired host entry %d: %v", entry.ID, err)
		}
		return nil, CacheMiss
	}

	var record models.HostRecord
	if err := json.Unmarshal([]byte(entry.Data), &record); err != nil {
		log.Printf("[CACHE] corrupt host entry for ip=%s: %v", ip, err)
		return nil, CacheUnavailable
	}
	return &record, CacheHit
}

// PutHost upserts the enriched record for an IP.
func (s *Store) PutHost(ip string, record *models.HostRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	entry := models.HostCacheEntry{
		IP:        ip,
		Data:      string(raw),
		ExpiresAt: s.now().Add(s.hostTTL),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// GetDNS looks up a cached hostname resolution.
func (s *Store) GetDNS(hostname string) (string, CacheState) {
	var entry models.DNSCacheEntry
	err := s.db.Where("hostname = ?", hostname).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", CacheMiss
	}
	if err != nil {
		log.Printf("[CACHE] dns lookup failed for hostname=%s: %v", hostname, err)
		return "", CacheUnavailable
	}

	if !s.now().Before(entry.ExpiresAt) {
		log.Printf("[CACHE] dns entry expired for hostname=%s, deleting", hostname)
		if err := s.db.Delete(&models.DNSCacheEntry{}, entry.ID).Error; err != nil {
			log.Printf("[CACHE] failed to delete expired dns entry %d: %v", entry.ID, err)
		}
		return "", CacheMiss
	}
	return entry.IP, CacheHit
}

// PutDNS upserts a hostname→IP resolution.
func (s *Store) PutDNS(hostname, ip string) error {
	entry := models.DNSCacheEntry{
		Hostname:  hostname,
		IP:        ip,
		ExpiresAt: s.now().Add(s.dnsTTL),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hostname"}},
		DoUpdates: clause.AssignmentColumns([]string{"ip", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// Sweep deletes every expired row across all three kinds and reports
// per-kind counts. Idempotent: a second sweep with no new expirations
// deletes nothing.
func (s *Store) Sweep() (models.SweepResult, error) {
	now := s.now()
	var result models.SweepResult

	res := s.db.Where("expires_at < ?", now).Delete(&models.SearchCacheEntry{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Searches = res.RowsAffected

	res = s.db.Where("expires_at < ?", now).Delete(&models.HostCacheEntry{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Hosts = res.RowsAffected

	res = s.db.Where("expires_at < ?", now).Delete(&models.DNSCacheEntry{})
	if res.Error != nil {
		return result, res.Error
	}
	result.DNS = res.RowsAffected

	log.Printf("[CACHE] sweep removed %d searches, %d hosts, %d dns entries",
		result.Searches, result.Hosts, result.DNS)
	return result, nil
}

// Stats reports total, expired and active counts per kind. Expired
// counts are computed from timestamps at call time because lazy
// expiry may not have fired for every stale row yet.
func (s *Store) Stats() (models.CacheStats, error) {
	now := s.now()
	var stats models.CacheStats

	kinds := []struct {
		model any
		out   *models.CacheKindStats
	}{
		{&models.SearchCacheEntry{}, &stats.Searches},
		{&models.HostCacheEntry{}, &stats.Hosts},
		{&models.DNSCacheEntry{}, &stats.DNS},
	}

	for _, k := range kinds {
		if err := s.db.Model(k.model).Count(&k.out.Total).Error; err != nil {
			return stats, err
		}
		if err := s.db.Model(k.model).Where("expires_at < ?", now).Count(&k.out.Expired).Error; err != nil {
			return stats, err
		}
		k.out.Active = k.out.Total - k.out.Expired
	}
	return stats, nil
}

// ClearAll truncates every cache kind. Development helper; does not
// touch favorites.
func (s *Store) ClearAll() (models.SweepResult, error) {
	var result models.SweepResult

	res := s.db.Where("1 = 1").Delete(&models.SearchCacheEntry{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Searches = res.RowsAffected

	res = s.db.Where("1 = 1").Delete(&models.HostCacheEntry{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Hosts = res.RowsAffected

	res = s.db.Where("1 = 1").Delete(&models.DNSCacheEntry{})
	if res.Error != nil {
		return result, res.Error
	}
	result.DNS = res.RowsAffected

	log.Printf("[CACHE] cleared all entries: %d searches, %d hosts, %d dns",
		result.Searches, result.Hosts, result.DNS)
	return result, nil
}
