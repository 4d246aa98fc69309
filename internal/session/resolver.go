package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zachrip/valpal/internal/lockfile"
	"github.com/zachrip/valpal/internal/riot"
)

var (
	ErrClientNotRunning = errors.New("local client not running")
	ErrNoPlacement      = errors.New("no region/shard answered for player")
)

const (
	DefaultProbeRetries = 5
	DefaultProbeDelay   = 2500 * time.Millisecond
)

type Config struct {
	Lockfile lockfile.Source
	// LocalClient talks to the loopback token endpoint.
	LocalClient *http.Client
	// Remote configures the clients used for probing.
	Remote        riot.Options
	Cache         *RegionCache
	Candidates    []Placement
	// Retries is the number of extra passes over Candidates. Zero means
	// DefaultProbeRetries; negative disables retrying.
	Retries       int
	RetryDelay    time.Duration
	ClientVersion string
	Logger        *zap.Logger
}

type Resolver struct {
	cfg   Config
	log   *zap.Logger
	group singleflight.Group
}

func NewResolver(cfg Config) *Resolver {
	if cfg.LocalClient == nil {
		cfg.LocalClient = lockfile.HTTPClient(10 * time.Second)
	}
	if cfg.Cache == nil {
		cfg.Cache = NewRegionCache()
	}
	if cfg.Candidates == nil {
		cfg.Candidates = Candidates
	}
	switch {
	case cfg.Retries == 0:
		cfg.Retries = DefaultProbeRetries
	case cfg.Retries < 0:
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultProbeDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg, log: cfg.Logger}
}

// Cache exposes the placement cache shared by every resolution.
func (r *Resolver) Cache() *RegionCache { return r.cfg.Cache }

// Resolve returns the current session, or nil when none can be established.
// A missing lockfile, a failed token exchange, an unanswered probe and even a
// panic all end in nil; callers skip and try again later.
func (r *Resolver) Resolve(ctx context.Context) *Session {
	v, _, _ := r.group.Do("resolve", func() (any, error) {
		return r.resolveSafe(ctx), nil
	})
	s, _ := v.(*Session)
	return s
}

func (r *Resolver) resolveSafe(ctx context.Context) (s *Session) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("session resolution panicked", zap.Any("panic", p))
			s = nil
		}
	}()

	s, err := r.resolve(ctx)
	switch {
	case errors.Is(err, ErrClientNotRunning):
		r.log.Debug("lockfile not found")
		return nil
	case err != nil:
		r.log.Warn("failed to resolve session", zap.Error(err))
		return nil
	}
	return s
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
	Subject     string `json:"subject"`
	Issuer      string `json:"issuer"`
}

func (r *Resolver) resolve(ctx context.Context) (*Session, error) {
	lf, err := r.cfg.Lockfile.Lockfile()
	if err != nil {
		return nil, err
	}
	if lf == nil {
		return nil, ErrClientNotRunning
	}

	tokens, err := r.exchange(ctx, lf)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		AccessToken:       tokens.AccessToken,
		EntitlementsToken: tokens.Token,
		UserID:            tokens.Subject,
		ClientVersion:     r.cfg.ClientVersion,
	}
	claims := readClaims(tokens.AccessToken, r.log)
	if sess.UserID == "" {
		sess.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	if sess.UserID == "" {
		return nil, errors.New("token response carries no subject")
	}

	placement, ok := r.cfg.Cache.Get(sess.UserID)
	if !ok {
		placement, err = r.probe(ctx, sess)
		if err != nil {
			return nil, err
		}
		r.log.Info("found user region and shard",
			zap.String("user_id", sess.UserID),
			zap.String("region", string(placement.Region)),
			zap.String("shard", string(placement.Shard)))
		r.cfg.Cache.Put(sess.UserID, placement)
	}
	sess.Region = placement.Region
	sess.Shard = placement.Shard
	return sess, nil
}

func (r *Resolver) exchange(ctx context.Context, lf *lockfile.Lockfile) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lf.URL("https")+"/entitlements/v1/token", nil)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Authorization", lf.BasicAuth())

	resp, err := r.cfg.LocalClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange tokens: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("exchange tokens: unexpected status %d", resp.StatusCode)
	}
	var out tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" || out.Token == "" {
		return nil, errors.New("token response is missing tokens")
	}
	return &out, nil
}

// probe walks the candidates in order. A 404 means "not this shard"; other
// errors are logged and also move on. The whole walk is retried.
func (r *Resolver) probe(ctx context.Context, sess *Session) (Placement, error) {
	for attempt := 0; ; attempt++ {
		for _, c := range r.cfg.Candidates {
			creds := sess.Credentials()
			creds.Region, creds.Shard = c.Region, c.Shard

			party, err := riot.NewClient(creds, r.cfg.Remote).GetParty(ctx)
			fields := []zap.Field{zap.String("region", string(c.Region)), zap.String("shard", string(c.Shard))}
			switch {
			case err == nil && party.Subject != "":
				return c, nil
			case err == nil:
				r.log.Debug("probe answered without subject, continuing", fields...)
			case ctx.Err() != nil:
				return Placement{}, ctx.Err()
			case riot.IsNotFound(err):
				r.log.Debug("probe got 404, continuing", fields...)
			default:
				r.log.Warn("probe failed, continuing", append(fields, zap.Error(err))...)
			}
		}

		if attempt >= r.cfg.Retries {
			return Placement{}, ErrNoPlacement
		}
		r.log.Info("failed to find user region and shard, retrying",
			zap.Int("attempt", attempt+1), zap.Duration("delay", r.cfg.RetryDelay))
		select {
		case <-ctx.Done():
			return Placement{}, ctx.Err()
		case <-time.After(r.cfg.RetryDelay):
		}
	}
}

// readClaims decodes the access token without verifying it; the token came
// from the local client over loopback and is only inspected, never trusted.
func readClaims(token string, log *zap.Logger) jwt.RegisteredClaims {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		log.Debug("access token is not a readable jwt", zap.Error(err))
	}
	return claims
}
