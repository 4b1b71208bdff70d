package services

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/echord/echord-backend/models"
)

// RawHostDocument is the upstream host payload as Shodan returns it.
// Only the fields the enricher consumes are decoded.
type RawHostDocument struct {
	IPStr       string       `json:"ip_str"`
	Org         string       `json:"org"`
	ISP         string       `json:"isp"`
	Hostnames   []string     `json:"hostnames"`
	Domains     []string     `json:"domains"`
	CountryName string       `json:"country_name"`
	City        string       `json:"city"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
	LastUpdate  string       `json:"last_update"`
	Data        []RawService `json:"data"`
	Vulns       []string     `json:"vulns"`
}

// RawService is one upstream service banner.
type RawService struct {
	Port      int       `json:"port"`
	Transport string    `json:"transport"`
	Product   string    `json:"product"`
	Version   string    `json:"version"`
	CPE       []string  `json:"cpe"`
	Hash      *int64    `json:"hash"`
	Tags      []string  `json:"tags"`
	HTTP      *RawHTTP  `json:"http"`
	SSL       *RawSSL   `json:"ssl"`
	Shodan    rawShodan `json:"_shodan"`
}

type RawHTTP struct {
	Server    string            `json:"server"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Redirects []json.RawMessage `json:"redirects"`
	Headers   map[string]string `json:"headers"`
}

type RawSSL struct {
	Cert     json.RawMessage `json:"cert"`
	Cipher   string          `json:"cipher"`
	Versions []string        `json:"versions"`
}

type rawShodan struct {
	Module string `json:"module"`
}

const unknownService = "unknown"

// providerPatterns is checked in priority order; first match wins.
var providerPatterns = []struct {
	substr string
	hint   string
}{
	{"google", "Google"},
	{"amazon", "AWS"},
	{"microsoft", "Microsoft"},
	{"cloudflare", "Cloudflare"},
}

// EnrichHost turns a raw upstream host document into the stable
// enriched record. Deterministic: the same input always produces the
// same output, which is what makes cached and fresh records comparable.
func EnrichHost(doc *RawHostDocument) *models.HostRecord {
	services := normalizeServices(doc.Data)

	// Unique ports in first-encounter order; buckets keep that order,
	// while the summary's open_ports list is sorted ascending.
	seen := map[int]bool{}
	var uniquePorts []int
	for _, svc := range doc.Data {
		if !seen[svc.Port] {
			seen[svc.Port] = true
			uniquePorts = append(uniquePorts, svc.Port)
		}
	}

	buckets := map[string][]int{}
	for _, name := range BucketNames {
		buckets[name] = []int{}
	}
	for _, port := range uniquePorts {
		cat := CategorizePort(port)
		buckets[cat] = append(buckets[cat], port)
	}

	openPorts := append([]int(nil), uniquePorts...)
	sort.Ints(openPorts)
	if openPorts == nil {
		openPorts = []int{}
	}

	summary := models.HostSummary{
		OpenPortsCount: len(uniquePorts),
		OpenPorts:      openPorts,
		TopService:     topService(services),
		WebStack:       webStack(services, buckets[CategoryWeb]),
		TLSSummary:     tlsSummary(services),
		ProviderHint:   providerHint(doc.Org),
		Badges:         badges(buckets),
		RiskScore:      riskScore(buckets, len(uniquePorts)),
		ExposureFlags:  exposureFlags(buckets, services),
		PortBuckets:    buckets,
	}

	vulns := doc.Vulns
	if vulns == nil {
		vulns = []string{}
	}

	return &models.HostRecord{
		IP:        doc.IPStr,
		Org:       orDefault(doc.Org),
		ISP:       orDefault(doc.ISP),
		Hostnames: orEmpty(doc.Hostnames),
		Domains:   orEmpty(doc.Domains),
		Geo: models.GeoInfo{
			Country: orDefault(doc.CountryName),
			City:    orDefault(doc.City),
			Lat:     doc.Latitude,
			Lon:     doc.Longitude,
		},
		LastUpdate: doc.LastUpdate,
		Summary:    summary,
		Services:   services,
		Vulns:      vulns,
	}
}

func normalizeServices(raw []RawService) []models.NormalizedService {
	out := make([]models.NormalizedService, 0, len(raw))
	for _, svc := range raw {
		name := svc.Product
		if name == "" {
			name = svc.Shodan.Module
		}
		if name == "" {
			name = unknownService
		}

		transport := svc.Transport
		if transport == "" {
			transport = "tcp"
		}

		n := models.NormalizedService{
			Port:        svc.Port,
			Transport:   transport,
			Service:     name,
			Product:     svc.Product,
			Version:     svc.Version,
			CPE:         orEmpty(svc.CPE),
			Fingerprint: svc.Hash,
			RawTags:     orEmpty(svc.Tags),
		}

		if svc.HTTP != nil {
			headers := svc.HTTP.Headers
			if headers == nil {
				headers = map[string]string{}
			}
			redirects := svc.HTTP.Redirects
			if redirects == nil {
				redirects = []json.RawMessage{}
			}
			n.HTTP = &models.HTTPInfo{
				Server:    svc.HTTP.Server,
				Title:     svc.HTTP.Title,
				Status:    svc.HTTP.Status,
				Redirects: redirects,
				Headers:   headers,
			}
		}

		if svc.SSL != nil {
			n.SSL = &models.SSLInfo{
				Cert:     svc.SSL.Cert,
				Cipher:   svc.SSL.Cipher,
				Versions: orEmpty(svc.SSL.Versions),
			}
		}

		out = append(out, n)
	}
	return out
}

// topService picks the service name with the highest occurrence count.
// Ties go to the name encountered first, so the result is stable for a
// given input order.
func topService(services []models.NormalizedService) string {
	if len(services) == 0 {
		return unknownService
	}

	counts := map[string]int{}
	var order []string
	for _, svc := range services {
		if counts[svc.Service] == 0 {
			order = append(order, svc.Service)
		}
		counts[svc.Service]++
	}

	top := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[top] {
			top = name
		}
	}
	return top
}

// webStack joins the distinct HTTP server banners seen on web ports.
// Empty when no banner is available.
func webStack(services []models.NormalizedService, webPorts []int) string {
	if len(webPorts) == 0 {
		return ""
	}
	isWeb := map[int]bool{}
	for _, p := range webPorts {
		isWeb[p] = true
	}

	seen := map[string]bool{}
	var servers []string
	for _, svc := range services {
		if !isWeb[svc.Port] || svc.HTTP == nil || svc.HTTP.Server == "" {
			continue
		}
		if !seen[svc.HTTP.Server] {
			seen[svc.HTTP.Server] = true
			servers = append(servers, svc.HTTP.Server)
		}
	}
	return strings.Join(servers, ", ")
}

// tlsSummary reports the TLS service count and up to the first three
// distinct cipher names. Nil when the host exposes no TLS service.
func tlsSummary(services []models.NormalizedService) *models.TLSSummary {
	var count int
	seen := map[string]bool{}
	ciphers := []string{}
	for _, svc := range services {
		if svc.SSL == nil {
			continue
		}
		count++
		c := svc.SSL.Cipher
		if c == "" || seen[c] || len(ciphers) >= 3 {
			continue
		}
		seen[c] = true
		ciphers = append(ciphers, c)
	}
	if count == 0 {
		return nil
	}
	return &models.TLSSummary{ServicesCount: count, CommonCiphers: ciphers}
}

func providerHint(org string) string {
	lower := strings.ToLower(org)
	for _, p := range providerPatterns {
		if strings.Contains(lower, p.substr) {
			return p.hint
		}
	}
	return ""
}

// badges adds one badge per populated bucket in fixed order. The
// remote_access bucket intentionally never badges; it only raises an
// exposure flag.
func badges(buckets map[string][]int) []string {
	out := []string{}
	if len(buckets[CategoryDNS]) > 0 {
		out = append(out, "dns")
	}
	if len(buckets[CategoryWeb]) > 0 {
		out = append(out, "web")
	}
	if len(buckets[CategoryDB]) > 0 {
		out = append(out, "database")
	}
	if len(buckets[CategoryMail]) > 0 {
		out = append(out, "mail")
	}
	return out
}

// riskScore applies the fixed additive heuristic: 30 for remote
// access, 25 for databases, 10 for web, 15 for more than ten open
// ports, clamped to 100.
func riskScore(buckets map[string][]int, uniquePortCount int) int {
	score := 0
	if len(buckets[CategoryRemoteAccess]) > 0 {
		score += 30
	}
	if len(buckets[CategoryDB]) > 0 {
		score += 25
	}
	if len(buckets[CategoryWeb]) > 0 {
		score += 10
	}
	if uniquePortCount > 10 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

func exposureFlags(buckets map[string][]int, services []models.NormalizedService) []string {
	flags := []string{}
	if len(buckets[CategoryRemoteAccess]) > 0 {
		flags = append(flags, "remote_access_exposed")
	}
	if len(buckets[CategoryDB]) > 0 {
		flags = append(flags, "database_exposed")
	}
	for _, svc := range services {
		if svc.HTTP != nil && svc.SSL == nil {
			flags = append(flags, "unencrypted_web")
			break
		}
	}
	return flags
}

func orDefault(s string) string {
	if s == "" {
		return models.NoDataSentinel
	}
	return s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
