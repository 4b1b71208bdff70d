package services

import "testing"

func TestCategorizePortKnownPorts(t *testing.T) {
	cases := []struct {
		port int
		want string
	}{
		{80, CategoryWeb},
		{443, CategoryWeb},
		{8085, CategoryWeb},
		{3306, CategoryDB},
		{6379, CategoryDB},
		{9300, CategoryDB},
		{22, CategoryRemoteAccess},
		{3389, CategoryRemoteAccess},
		{5802, CategoryRemoteAccess},
		{25, CategoryMail},
		{2525, CategoryMail},
		{53, CategoryDNS},
		{0, CategoryOther},
		{1, CategoryOther},
		{12345, CategoryOther},
		{65535, CategoryOther},
	}
	for _, tc := range cases {
		if got := CategorizePort(tc.port); got != tc.want {
			t.Errorf("CategorizePort(%d) = %q, want %q", tc.port, got, tc.want)
		}
	}
}

func TestCategorizePortTotality(t *testing.T) {
	valid := map[string]bool{}
	for _, name := range BucketNames {
		valid[name] = true
	}
	for port := 0; port <= 65535; port++ {
		cat := CategorizePort(port)
		if !valid[cat] {
			t.Fatalf("CategorizePort(%d) returned unknown category %q", port, cat)
		}
	}
}

func TestEveryTablePortInItsOwnBucket(t *testing.T) {
	for cat, ports := range portCategories {
		for _, p := range ports {
			if got := CategorizePort(p); got != cat {
				t.Errorf("port %d classified as %q, want %q", p, got, cat)
			}
		}
	}
}
