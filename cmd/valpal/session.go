package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/zachrip/valpal/internal/session"
)

type sessionView struct {
	UserID            string `json:"userId"`
	Region            string `json:"region"`
	Shard             string `json:"shard"`
	ClientVersion     string `json:"clientVersion"`
	ExpiresAt         string `json:"expiresAt,omitempty"`
	AccessToken       string `json:"accessToken"`
	EntitlementsToken string `json:"entitlementsToken"`
}

func redact(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func viewSession(s *session.Session) sessionView {
	v := sessionView{
		UserID:            s.UserID,
		Region:            string(s.Region),
		Shard:             string(s.Shard),
		ClientVersion:     s.ClientVersion,
		AccessToken:       redact(s.AccessToken),
		EntitlementsToken: redact(s.EntitlementsToken),
	}
	if !s.ExpiresAt.IsZero() {
		v.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return v
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Resolve and print the current session with tokens redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); err == nil {
					err = closeErr
				}
			}()

			sess := a.resolver.Resolve(cmd.Context())
			if sess == nil {
				return errNotRunning
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(viewSession(sess))
		},
	}
}
