package geoip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
)

// ErrGeoUnresolved marks lookups that could not produce a location. The geo
// gate treats an unresolved location as a normal outcome, not a failure of
// the enrollment flow.
var ErrGeoUnresolved = errors.New("could not resolve a geo location for the caller")

// Location is the subset of the lookup provider's response the eligibility
// gates care about.
type Location struct {
	IPAddress     string `json:"ipAddress"`
	CountryCode   string `json:"countryCode"`
	Country       string `json:"country"`
	RegionISOCode string `json:"regionIsoCode"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

// SubdivisionCode combines country and region into the ISO 3166-2 style code
// used for regional quotas, e.g. "KE-30".
func (l Location) SubdivisionCode() string {
	if l.CountryCode == "" || l.RegionISOCode == "" {
		return ""
	}
	return l.CountryCode + "-" + l.RegionISOCode
}

type ResolverConfig struct {
	// IPEchoURL is an ipify style endpoint answering {"ip": "..."}; used when
	// the caller address is missing or private.
	IPEchoURL string `yaml:"ip_echo_url"`
	// LookupURL is an abstract-api style geolocation endpoint taking api_key
	// and ip_address query parameters.
	LookupURL string        `yaml:"lookup_url"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Resolver turns a caller IP into a country. Both upstream services are
// optional third parties, so every failure collapses into ErrGeoUnresolved.
type Resolver struct {
	ipEcho httpclient.ClientConfig
	lookup httpclient.ClientConfig
	apiKey string
}

func NewResolver(config ResolverConfig) *Resolver {
	return &Resolver{
		ipEcho: httpclient.ClientConfig{
			RootURL: config.IPEchoURL,
			Timeout: config.Timeout,
		},
		lookup: httpclient.ClientConfig{
			RootURL: config.LookupURL,
			Timeout: config.Timeout,
		},
		apiKey: config.APIKey,
	}
}

// Resolve looks up the location for callerIP. A private or empty callerIP is
// replaced by the address the echo service sees.
func (r *Resolver) Resolve(ctx context.Context, callerIP string) (Location, error) {
	ipAddress := callerIP
	if !isPublicAddress(ipAddress) {
		echoed, err := r.echoIPAddress(ctx)
		if err != nil {
			return Location{}, err
		}
		ipAddress = echoed
	}
	return r.lookupAddress(ctx, ipAddress)
}

func (r *Resolver) echoIPAddress(ctx context.Context) (string, error) {
	if r.ipEcho.RootURL == "" {
		slog.Debug("geo lookup skipped, no ip echo service configured")
		return "", ErrGeoUnresolved
	}
	resp, err := r.ipEcho.RunHTTPcall(ctx, http.MethodGet, "/", nil)
	if err != nil {
		slog.Warn("ip echo failed", slog.String("error", err.Error()))
		return "", ErrGeoUnresolved
	}
	ipAddress, ok := resp["ip"].(string)
	if !ok || ipAddress == "" {
		return "", ErrGeoUnresolved
	}
	return ipAddress, nil
}

func (r *Resolver) lookupAddress(ctx context.Context, ipAddress string) (Location, error) {
	if r.lookup.RootURL == "" || r.apiKey == "" {
		slog.Debug("geo lookup skipped, no lookup service configured")
		return Location{}, ErrGeoUnresolved
	}

	pathname := fmt.Sprintf("/?api_key=%s&ip_address=%s",
		url.QueryEscape(r.apiKey), url.QueryEscape(ipAddress))
	resp, err := r.lookup.RunHTTPcall(ctx, http.MethodGet, pathname, nil)
	if err != nil {
		slog.Warn("geo lookup failed", slog.String("error", err.Error()))
		return Location{}, ErrGeoUnresolved
	}

	location := Location{
		IPAddress:     ipAddress,
		CountryCode:   stringField(resp, "country_code"),
		Country:       stringField(resp, "country"),
		RegionISOCode: stringField(resp, "region_iso_code"),
		City:          stringField(resp, "city"),
		PostalCode:    stringField(resp, "postal_code"),
	}
	if location.CountryCode == "" {
		return Location{}, ErrGeoUnresolved
	}
	return location, nil
}

func stringField(resp map[string]interface{}, key string) string {
	value, _ := resp[key].(string)
	return value
}

// isPublicAddress reports whether ip is a routable address a geolocation
// service can resolve. Loopback, LAN and link-local addresses are what the
// service sees when it runs behind a proxy without forwarding headers.
func isPublicAddress(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsPrivate() && !parsed.IsLoopback() && !parsed.IsLinkLocalUnicast() && !parsed.IsUnspecified()
}
