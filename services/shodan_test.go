package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/echord/echord-backend/config"
)

func newTestClient(serverURL string, timeout time.Duration) *ShodanClient {
	return NewShodanClient(config.Config{
		ShodanAPIKey:  "test-key",
		ShodanBaseURL: serverURL,
		ShodanTimeout: timeout,
	})
}

func TestSearchHostsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/host/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		if got := r.URL.Query().Get("query"); got != "apache" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[{"ip_str":"1.2.3.4","port":80,"org":"ExampleOrg","location":{"country_name":"US"},"hostnames":[]}],"total":1}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	resp, err := c.SearchHosts(context.Background(), "apache", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Total != 1 || len(resp.Matches) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	m := resp.Matches[0]
	if m.IPStr != "1.2.3.4" || m.Port != 80 || m.Location.CountryName != "US" {
		t.Errorf("match = %+v", m)
	}
}

func TestGetHostSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/host/1.2.3.4" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"ip_str":"1.2.3.4","org":"ExampleOrg","data":[{"port":22,"transport":"tcp","product":"OpenSSH"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	doc, err := c.GetHost(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("get host: %v", err)
	}
	if doc.IPStr != "1.2.3.4" || len(doc.Data) != 1 || doc.Data[0].Port != 22 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":"nope"}`))
		}))
		c := newTestClient(srv.URL, 5*time.Second)
		_, err := c.GetHost(context.Background(), "1.2.3.4")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestSearchNotFoundIsUpstreamError(t *testing.T) {
	// 404 is only a typed NotFound on the host path; search has no
	// not-found semantics.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no information available"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	_, err := c.SearchHosts(context.Background(), "apache", 1)
	var uErr *UpstreamError
	if !errors.As(err, &uErr) {
		t.Fatalf("got %v, want UpstreamError", err)
	}
	if uErr.Status != http.StatusNotFound || uErr.Message != "no information available" {
		t.Errorf("upstream error = %+v", uErr)
	}
}

func TestUpstreamErrorPreservesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"maintenance window"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	_, err := c.GetHost(context.Background(), "1.2.3.4")
	var uErr *UpstreamError
	if !errors.As(err, &uErr) {
		t.Fatalf("got %v, want UpstreamError", err)
	}
	if uErr.Status != http.StatusServiceUnavailable || uErr.Message != "maintenance window" {
		t.Errorf("upstream error = %+v", uErr)
	}
}

func TestTimeoutMapsToErrTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 30*time.Millisecond)
	_, err := c.GetHost(context.Background(), "1.2.3.4")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}
