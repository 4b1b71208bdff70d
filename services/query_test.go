package services

import (
	"context"
	"errors"
	"testing"

	"github.com/echord/echord-backend/models"
)

type stubGateway struct {
	searchCalls int
	hostCalls   int
	searchResp  *SearchResponse
	hostResp    *RawHostDocument
	err         error
}

func (g *stubGateway) SearchHosts(ctx context.Context, query string, page int) (*SearchResponse, error) {
	g.searchCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.searchResp, nil
}

func (g *stubGateway) GetHost(ctx context.Context, ip string) (*RawHostDocument, error) {
	g.hostCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.hostResp, nil
}

type stubResolver struct {
	calls int
	ip    string
	err   error
}

func (r *stubResolver) Resolve(ctx context.Context, hostname string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.ip, nil
}

func apacheResponse() *SearchResponse {
	return &SearchResponse{
		Matches: []RawSearchMatch{
			{IPStr: "1.2.3.4", Port: 80, Org: "ExampleOrg", Location: rawLocation{CountryName: "US"}, Hostnames: []string{}},
		},
		Total: 1,
	}
}

func TestSearchMissFetchesAndCaches(t *testing.T) {
	store := newTestStore(t)
	gw := &stubGateway{searchResp: apacheResponse()}
	o := NewOrchestrator(store, gw, &stubResolver{})

	result, err := o.Search(context.Background(), "apache", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gw.searchCalls != 1 {
		t.Fatalf("upstream calls = %d, want 1", gw.searchCalls)
	}

	if len(result.Data) != 1 || result.Data[0].CountryName != "US" {
		t.Errorf("data = %+v", result.Data)
	}
	p := result.Pagination
	if p.Page != 1 || p.Size != 10 || p.Total != 1 || p.TotalPages != 1 || p.HasNext || p.HasPrev {
		t.Errorf("pagination = %+v", p)
	}

	// The page is now cached: a second call must not hit upstream.
	if _, err := o.Search(context.Background(), "apache", 1, 10); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if gw.searchCalls != 1 {
		t.Errorf("upstream calls = %d after cache hit, want 1", gw.searchCalls)
	}

	if _, state := store.GetSearch("apache", 1); state != CacheHit {
		t.Errorf("cache state = %v, want hit", state)
	}
}

func TestSearchEmptyQueryIsValidationError(t *testing.T) {
	store := newTestStore(t)
	gw := &stubGateway{searchResp: apacheResponse()}
	o := NewOrchestrator(store, gw, &stubResolver{})

	_, err := o.Search(context.Background(), "   ", 1, 10)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if gw.searchCalls != 0 {
		t.Errorf("upstream called on invalid input")
	}
}

func TestSearchTruncatesToPageSize(t *testing.T) {
	store := newTestStore(t)
	resp := &SearchResponse{Total: 250}
	for i := 0; i < 25; i++ {
		resp.Matches = append(resp.Matches, RawSearchMatch{IPStr: "1.2.3.4", Port: 80})
	}
	o := NewOrchestrator(store, &stubGateway{searchResp: resp}, &stubResolver{})

	result, err := o.Search(context.Background(), "nginx", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Data) != 10 {
		t.Errorf("data length = %d, want 10", len(result.Data))
	}
	if result.Pagination.Total != 250 || result.Pagination.TotalPages != 25 || !result.Pagination.HasNext {
		t.Errorf("pagination = %+v", result.Pagination)
	}

	// The cache keeps the full upstream page, not the truncated slice.
	cached, state := store.GetSearch("nginx", 1)
	if state != CacheHit || len(cached.Matches) != 25 {
		t.Errorf("cached %d matches, want 25", len(cached.Matches))
	}
}

func TestSearchSentinelDefaults(t *testing.T) {
	store := newTestStore(t)
	resp := &SearchResponse{
		Matches: []RawSearchMatch{{IPStr: "5.5.5.5", Port: 443}},
		Total:   1,
	}
	o := NewOrchestrator(store, &stubGateway{searchResp: resp}, &stubResolver{})

	result, err := o.Search(context.Background(), "ssl", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	m := result.Data[0]
	if m.Org != models.NoDataSentinel || m.CountryName != models.NoDataSentinel {
		t.Errorf("defaults not applied: %+v", m)
	}
	if m.Hostnames == nil {
		t.Errorf("hostnames must be empty, not nil")
	}
}

func TestSearchUpstreamErrorLeavesCacheUntouched(t *testing.T) {
	store := newTestStore(t)
	gw := &stubGateway{err: ErrUnauthorized}
	o := NewOrchestrator(store, gw, &stubResolver{})

	_, err := o.Search(context.Background(), "apache", 1, 10)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}

	stats, _ := store.Stats()
	if stats.Searches.Total != 0 {
		t.Errorf("cache written despite upstream failure")
	}
}

func TestSearchCacheUnavailableDegradesToMiss(t *testing.T) {
	store := newTestStore(t)
	if err := store.db.Migrator().DropTable(&models.SearchCacheEntry{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	gw := &stubGateway{searchResp: apacheResponse()}
	o := NewOrchestrator(store, gw, &stubResolver{})

	result, err := o.Search(context.Background(), "apache", 1, 10)
	if err != nil {
		t.Fatalf("search must succeed without the cache: %v", err)
	}
	if gw.searchCalls != 1 {
		t.Errorf("upstream calls = %d, want 1", gw.searchCalls)
	}
	if len(result.Data) != 1 {
		t.Errorf("data = %+v", result.Data)
	}
}

func TestHostInfoMissEnrichesAndCaches(t *testing.T) {
	store := newTestStore(t)
	gw := &stubGateway{hostResp: &RawHostDocument{
		IPStr: "1.2.3.4",
		Org:   "ExampleOrg",
		Data:  []RawService{{Port: 22, Product: "OpenSSH"}, {Port: 80, Product: "nginx"}, {Port: 3306, Product: "MySQL"}},
	}}
	o := NewOrchestrator(store, gw, &stubResolver{})

	record, err := o.HostInfo(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("host info: %v", err)
	}
	if record.Summary.RiskScore != 65 {
		t.Errorf("risk score = %d, want 65", record.Summary.RiskScore)
	}

	// Cache hit path: the stored record comes back, upstream stays quiet
	// and enrichment does not re-run.
	again, err := o.HostInfo(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("second host info: %v", err)
	}
	if gw.hostCalls != 1 {
		t.Errorf("upstream calls = %d, want 1", gw.hostCalls)
	}
	if again.Summary.RiskScore != 65 || again.IP != "1.2.3.4" {
		t.Errorf("cached record = %+v", again.Summary)
	}
}

func TestHostInfoResolvesHostnames(t *testing.T) {
	store := newTestStore(t)
	gw := &stubGateway{hostResp: &RawHostDocument{IPStr: "93.184.216.34"}}
	res := &stubResolver{ip: "93.184.216.34"}
	o := NewOrchestrator(store, gw, res)

	record, err := o.HostInfo(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("host info: %v", err)
	}
	if res.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", res.calls)
	}
	if record.OriginalHostname != "example.com" {
		t.Errorf("original_hostname = %q", record.OriginalHostname)
	}

	// Literal IPs skip the resolver.
	if _, err := o.HostInfo(context.Background(), "93.184.216.34"); err != nil {
		t.Fatalf("ip host info: %v", err)
	}
	if res.calls != 1 {
		t.Errorf("resolver called for literal IP")
	}
}

func TestHostInfoResolutionFailure(t *testing.T) {
	store := newTestStore(t)
	res := &stubResolver{err: &ResolutionError{Hostname: "bad.example", Err: errors.New("nxdomain")}}
	gw := &stubGateway{}
	o := NewOrchestrator(store, gw, res)

	_, err := o.HostInfo(context.Background(), "bad.example")
	var rErr *ResolutionError
	if !errors.As(err, &rErr) {
		t.Fatalf("got %v, want ResolutionError", err)
	}
	if gw.hostCalls != 0 {
		t.Errorf("upstream called despite resolution failure")
	}
}

func TestHostInfoNotFound(t *testing.T) {
	store := newTestStore(t)
	o := NewOrchestrator(store, &stubGateway{err: ErrNotFound}, &stubResolver{})

	_, err := o.HostInfo(context.Background(), "1.2.3.4")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	stats, _ := store.Stats()
	if stats.Hosts.Total != 0 {
		t.Errorf("cache written for not-found host")
	}
}

func TestConcurrentMissesLastWriterWins(t *testing.T) {
	store := newTestStore(t)

	// Two racing misses both write; the unique key guarantees a single
	// final row.
	first := models.SearchPage{Matches: []models.SearchMatch{{IPStr: "1.1.1.1", Port: 80}}, Total: 1}
	second := models.SearchPage{Matches: []models.SearchMatch{{IPStr: "2.2.2.2", Port: 80}}, Total: 1}

	if err := store.PutSearch("race", 1, first); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.PutSearch("race", 1, second); err != nil {
		t.Fatalf("second put: %v", err)
	}

	stats, _ := store.Stats()
	if stats.Searches.Total != 1 {
		t.Fatalf("rows = %d, want 1", stats.Searches.Total)
	}
	got, state := store.GetSearch("race", 1)
	if state != CacheHit || got.Matches[0].IPStr != "2.2.2.2" {
		t.Errorf("winner = %+v, want the last write", got)
	}
}
