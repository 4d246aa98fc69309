// Package update checks for a newer published release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zachrip/valpal/internal/notify"
)

const (
	DefaultURL = "https://api.github.com/repos/zachrip/valpal/releases/latest"

	TitleAvailable = "Update Available"
	TitleFailed    = "Update Check Failed"
)

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Latest fetches the latest release description.
func Latest(ctx context.Context, client *http.Client, url string) (Release, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("decode release: %w", err)
	}
	return rel, nil
}

// Check notifies when the latest release differs from version, or when the
// check itself fails. It reports whether an update is available.
func Check(ctx context.Context, client *http.Client, url, version string, n notify.Notifier) bool {
	rel, err := Latest(ctx, client, url)
	if err != nil {
		n.Notify(TitleFailed, "Failed to check for updates. "+err.Error())
		return false
	}
	if normalize(rel.TagName) == normalize(version) {
		return false
	}
	n.Notify(TitleAvailable, "There's a new version of ValPal available! Please update at: "+rel.HTMLURL)
	return true
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
