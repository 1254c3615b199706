package updater

import (
	"net/url"
	"strings"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCandidates(t *testing.T) {
	base, err := url.Parse("https://updates.example.com/app/manifest.json")
	require.NoError(t, err)

	m := &Manifest{Releases: []Release{
		{Version: "1.9.0", URL: "app-1.9.0.tar.gz"},
		{Version: "2.1.0-rc.1", URL: "app-2.1.0-rc.1.tar.gz"},
		{Version: "v2.0.0", URL: "https://cdn.example.com/app-2.0.0.tar.gz", SHA256: " ABCDEF "},
		{Version: "2.0.0", URL: "mirror/app-2.0.0.tar.gz"},
		{Version: "1.0.0", URL: "app-1.0.0.tar.gz"},
		{Version: "not-a-version", URL: "app.tar.gz"},
		{Version: "3.0.0", URL: ""},
		{Version: "4.0.0", URL: "http://evil.example.com/app-4.0.0.tar.gz"},
	}}

	got := selectCandidates(m, version.Must(version.NewVersion("1.0.0")), base)

	versions := make([]string, 0, len(got))
	for _, c := range got {
		versions = append(versions, c.Version)
	}
	assert.Equal(t, []string{"2.1.0-rc.1", "2.0.0", "1.9.0"}, versions)

	assert.Equal(t, "https://cdn.example.com/app-2.0.0.tar.gz", got[1].DownloadURL, "first entry wins for duplicate versions")
	assert.Equal(t, "abcdef", got[1].SHA256)
	assert.Equal(t, "https://updates.example.com/app/app-1.9.0.tar.gz", got[2].DownloadURL)
}

func TestSelectCandidates_NothingNewer(t *testing.T) {
	m := &Manifest{Releases: []Release{{Version: "1.0.0", URL: "https://x.example.com/a"}}}

	assert.Empty(t, selectCandidates(m, version.Must(version.NewVersion("1.0.0")), nil))
	assert.Empty(t, selectCandidates(nil, nil, nil))
}

func TestDecodeManifest(t *testing.T) {
	m, err := decodeManifest(strings.NewReader(`{"releases":[{"version":"2.0.0","url":"a.tar.gz","published_at":"2025-01-02T03:04:05Z"}]}`))
	require.NoError(t, err)
	require.Len(t, m.Releases, 1)
	assert.Equal(t, 2025, m.Releases[0].PublishedAt.Year())

	_, err = decodeManifest(strings.NewReader(`{"releases":`))
	assert.Error(t, err)
}

func TestValidateDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "https", url: "https://updates.example.com/app.tar.gz"},
		{name: "loopback http", url: "http://127.0.0.1:8080/app.tar.gz"},
		{name: "ipv6 loopback http", url: "http://[::1]:8080/app.tar.gz"},
		{name: "localhost http", url: "http://localhost/app.tar.gz"},
		{name: "remote http", url: "http://updates.example.com/app.tar.gz", wantErr: "must use HTTPS"},
		{name: "ftp", url: "ftp://updates.example.com/app.tar.gz", wantErr: "must use HTTPS"},
		{name: "no host", url: "https:///app.tar.gz", wantErr: "must include a host"},
		{name: "empty", url: "", wantErr: "must include a host"},
		{name: "malformed", url: "://not-a-url", wantErr: "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDownloadURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
