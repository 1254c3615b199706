package updater

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/samber/lo"

	"github.com/bnema/upgate/internal/domain/entity"
)

// Manifest is the JSON document published next to the releases:
//
//	{"releases":[{"version":"2.0.0","url":"app-2.0.0.tar.gz","sha256":"…","notes":"…","published_at":"…"}]}
//
// Relative urls are resolved against the manifest location.
type Manifest struct {
	Releases []Release `json:"releases"`
}

// Release is one manifest entry.
type Release struct {
	Version     string    `json:"version"`
	URL         string    `json:"url"`
	SHA256      string    `json:"sha256,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

type parsedRelease struct {
	release Release
	version *version.Version
	url     string
}

// decodeManifest reads at most maxManifestSize bytes of JSON.
func decodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(io.LimitReader(r, maxManifestSize))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// selectCandidates keeps valid releases newer than current, one per version,
// ordered best (highest) first.
func selectCandidates(m *Manifest, current *version.Version, base *url.URL) []entity.Candidate {
	if m == nil {
		return nil
	}

	parsed := lo.FilterMap(m.Releases, func(r Release, _ int) (parsedRelease, bool) {
		v, err := version.NewVersion(strings.TrimSpace(r.Version))
		if err != nil || strings.TrimSpace(r.URL) == "" {
			return parsedRelease{}, false
		}
		if current != nil && !v.GreaterThan(current) {
			return parsedRelease{}, false
		}
		resolved, err := resolveDownloadURL(base, r.URL)
		if err != nil {
			return parsedRelease{}, false
		}
		return parsedRelease{release: r, version: v, url: resolved}, true
	})

	slices.SortStableFunc(parsed, func(a, b parsedRelease) int {
		return b.version.Compare(a.version)
	})
	parsed = lo.UniqBy(parsed, func(p parsedRelease) string {
		return p.version.String()
	})

	return lo.Map(parsed, func(p parsedRelease, _ int) entity.Candidate {
		return entity.Candidate{
			Version:      p.version.String(),
			DownloadURL:  p.url,
			SHA256:       strings.ToLower(strings.TrimSpace(p.release.SHA256)),
			ReleaseNotes: p.release.Notes,
			PublishedAt:  p.release.PublishedAt,
		}
	})
}

func resolveDownloadURL(base *url.URL, raw string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if err := validateDownloadURL(ref.String()); err != nil {
		return "", err
	}
	return ref.String(), nil
}

// validateDownloadURL requires HTTPS, except for loopback hosts.
func validateDownloadURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	switch parsed.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopbackHost(parsed.Hostname()) {
			return nil
		}
		return fmt.Errorf("URL must use HTTPS, got %s", parsed.Scheme)
	default:
		return fmt.Errorf("URL must use HTTPS, got %s", parsed.Scheme)
	}
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
