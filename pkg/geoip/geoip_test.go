package geoip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newEchoServer(t *testing.T, ip string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"ip": %q}`, ip)
	}))
	t.Cleanup(server.Close)
	return server
}

func newLookupServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestResolve(t *testing.T) {
	t.Run("public caller ip is used directly", func(t *testing.T) {
		var lookedUp string
		lookup := newLookupServer(t, func(w http.ResponseWriter, r *http.Request) {
			lookedUp = r.URL.Query().Get("ip_address")
			if r.URL.Query().Get("api_key") != "k1" {
				t.Errorf("unexpected api key: %q", r.URL.Query().Get("api_key"))
			}
			fmt.Fprint(w, `{"country_code": "KE", "country": "Kenya", "region_iso_code": "30", "city": "Nairobi", "postal_code": "00100"}`)
		})

		resolver := NewResolver(ResolverConfig{
			LookupURL: lookup.URL,
			APIKey:    "k1",
		})
		location, err := resolver.Resolve(context.Background(), "41.90.0.10")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if lookedUp != "41.90.0.10" {
			t.Errorf("unexpected lookup address: %q", lookedUp)
		}
		if location.CountryCode != "KE" {
			t.Errorf("unexpected country code: %q", location.CountryCode)
		}
		if location.SubdivisionCode() != "KE-30" {
			t.Errorf("unexpected subdivision code: %q", location.SubdivisionCode())
		}
	})

	t.Run("private caller ip falls back to echo service", func(t *testing.T) {
		echo := newEchoServer(t, "196.201.214.1")
		var lookedUp string
		lookup := newLookupServer(t, func(w http.ResponseWriter, r *http.Request) {
			lookedUp = r.URL.Query().Get("ip_address")
			fmt.Fprint(w, `{"country_code": "KE"}`)
		})

		resolver := NewResolver(ResolverConfig{
			IPEchoURL: echo.URL,
			LookupURL: lookup.URL,
			APIKey:    "k1",
		})
		if _, err := resolver.Resolve(context.Background(), "10.0.0.5"); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if lookedUp != "196.201.214.1" {
			t.Errorf("unexpected lookup address: %q", lookedUp)
		}
	})

	t.Run("lookup failure collapses to ErrGeoUnresolved", func(t *testing.T) {
		lookup := newLookupServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "quota exceeded"}`, http.StatusTooManyRequests)
		})

		resolver := NewResolver(ResolverConfig{
			LookupURL: lookup.URL,
			APIKey:    "k1",
		})
		if _, err := resolver.Resolve(context.Background(), "41.90.0.10"); !errors.Is(err, ErrGeoUnresolved) {
			t.Errorf("expected ErrGeoUnresolved, got %v", err)
		}
	})

	t.Run("missing configuration collapses to ErrGeoUnresolved", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{})
		if _, err := resolver.Resolve(context.Background(), "41.90.0.10"); !errors.Is(err, ErrGeoUnresolved) {
			t.Errorf("expected ErrGeoUnresolved, got %v", err)
		}
		if _, err := resolver.Resolve(context.Background(), ""); !errors.Is(err, ErrGeoUnresolved) {
			t.Errorf("expected ErrGeoUnresolved, got %v", err)
		}
	})

	t.Run("empty country code is unresolved", func(t *testing.T) {
		lookup := newLookupServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"city": "somewhere"}`)
		})
		resolver := NewResolver(ResolverConfig{
			LookupURL: lookup.URL,
			APIKey:    "k1",
		})
		if _, err := resolver.Resolve(context.Background(), "41.90.0.10"); !errors.Is(err, ErrGeoUnresolved) {
			t.Errorf("expected ErrGeoUnresolved, got %v", err)
		}
	})
}

func TestIsPublicAddress(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"41.90.0.10", true},
		{"2a00:1450:4001::1", true},
		{"10.0.0.5", false},
		{"192.168.1.20", false},
		{"172.16.4.1", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"0.0.0.0", false},
		{"", false},
		{"not-an-ip", false},
	}
	for _, c := range cases {
		if got := isPublicAddress(c.ip); got != c.want {
			t.Errorf("isPublicAddress(%q) = %v, want %v", c.ip, got, c.want)
		}
	}
}
