package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

const DefaultBaseURL = "https://valorant-api.com"

type envelope[T any] struct {
	Status int `json:"status"`
	Data   T   `json:"data"`
}

// Load fetches every catalog section concurrently. Any failed section fails
// the whole load.
func Load(ctx context.Context, baseURL string, client *http.Client) (*Catalog, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimRight(baseURL, "/")

	var data Data
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetch(ctx, client, base+"/v1/weapons", &data.Weapons) })
	g.Go(func() error { return fetch(ctx, client, base+"/v1/buddies", &data.Buddies) })
	g.Go(func() error { return fetch(ctx, client, base+"/v1/sprays", &data.Sprays) })
	g.Go(func() error { return fetch(ctx, client, base+"/v1/flex", &data.Flex) })
	g.Go(func() error { return fetch(ctx, client, base+"/v1/playercards", &data.PlayerCards) })
	g.Go(func() error { return fetch(ctx, client, base+"/v1/playertitles", &data.PlayerTitles) })
	g.Go(func() error {
		var agents []Agent
		if err := fetch(ctx, client, base+"/v1/agents?isPlayableCharacter=true", &agents); err != nil {
			return err
		}
		for _, a := range agents {
			if a.IsPlayableCharacter {
				data.Agents = append(data.Agents, a)
			}
		}
		return nil
	})
	g.Go(func() error { return fetch(ctx, client, base+"/v1/version", &data.Version) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(data), nil
}

func fetch[T any](ctx context.Context, client *http.Client, url string, out *T) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	*out = env.Data
	return nil
}
