package services

// Port categories used for bucketing and risk scoring.
const (
	CategoryWeb          = "web"
	CategoryDB           = "db"
	CategoryRemoteAccess = "remote_access"
	CategoryMail         = "mail"
	CategoryDNS          = "dns"
	CategoryOther        = "other"
)

// BucketNames lists every category in the order port_buckets is built.
var BucketNames = []string{
	CategoryWeb,
	CategoryDB,
	CategoryRemoteAccess,
	CategoryMail,
	CategoryDNS,
	CategoryOther,
}

var portCategories = map[string][]int{
	CategoryWeb: {
		80, 443, 8080, 8443, 8000, 8888, 3000, 5000, 9000, 8008,
		8081, 8082, 8083, 8084, 8085,
	},
	CategoryDB: {
		3306, 5432, 1433, 1521, 27017, 6379, 5984, 9042, 7000, 7001,
		9160, 9200, 9300,
	},
	CategoryRemoteAccess: {22, 23, 3389, 5900, 5901, 5902, 4899, 5800, 5801, 5802},
	CategoryMail:         {25, 110, 143, 993, 995, 465, 587, 2525},
	CategoryDNS:          {53},
}

var portLookup = func() map[int]string {
	m := make(map[int]string)
	for _, cat := range BucketNames {
		for _, p := range portCategories[cat] {
			m[p] = cat
		}
	}
	return m
}()

// CategorizePort maps a port number to its category. Every port maps
// to exactly one category; anything outside the known tables is
// CategoryOther.
func CategorizePort(port int) string {
	if cat, ok := portLookup[port]; ok {
		return cat
	}
	return CategoryOther
}
