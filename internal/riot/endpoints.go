package riot

import (
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Region string

const (
	RegionAsiaPacific  Region = "ap"
	RegionEurope       Region = "eu"
	RegionKorea        Region = "kr"
	RegionNorthAmerica Region = "na"
	RegionLatinAmerica Region = "latam"
	RegionBrazil       Region = "br"
)

type Shard string

const (
	ShardNorthAmerica Shard = "na"
	ShardEurope       Shard = "eu"
	ShardAsiaPacific  Shard = "ap"
	ShardKorea        Shard = "kr"
	ShardPBE          Shard = "pbe"
)

// Endpoints builds the base URL of each remote service family.
type Endpoints struct {
	PlayerData func(region Region) string
	Party      func(region Region, shard Shard) string
}

var DefaultEndpoints = Endpoints{
	PlayerData: func(region Region) string {
		return fmt.Sprintf("https://pd.%s.a.pvp.net", region)
	},
	Party: func(region Region, shard Shard) string {
		return fmt.Sprintf("https://glz-%s-1.%s.a.pvp.net", region, shard)
	},
}

// cipherSuites is the handshake profile the remote front door expects.
// crypto/tls always offers the three TLS 1.3 suites and does not let them be
// reordered, so only the TLS 1.2 entry changes what goes on the wire.
var cipherSuites = []uint16{
	tls.TLS_CHACHA20_POLY1305_SHA256,
	tls.TLS_AES_128_GCM_SHA256,
	tls.TLS_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

// TLSConfig returns the restricted TLS profile used for every remote call.
func TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		CipherSuites: cipherSuites,
	}
}

// NewHTTPClient returns a client using TLSConfig.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = TLSConfig()
	// A custom TLS config disables the automatic HTTP/2 upgrade; keep it that way.
	transport.ForceAttemptHTTP2 = false
	return &http.Client{Transport: transport, Timeout: timeout}
}

// Credentials are the per-session values every remote request carries.
type Credentials struct {
	AccessToken       string
	EntitlementsToken string
	ClientVersion     string
	UserID            string
	Region            Region
	Shard             Shard
}

type clientPlatform struct {
	PlatformType      string `json:"platformType"`
	PlatformOS        string `json:"platformOS"`
	PlatformOSVersion string `json:"platformOSVersion"`
	PlatformChipset   string `json:"platformChipset"`
}

var platformHeader = func() string {
	raw, _ := json.Marshal(clientPlatform{
		PlatformType:      "PC",
		PlatformOS:        "Windows",
		PlatformOSVersion: "10.0.19042.1.256.64bit",
		PlatformChipset:   "Unknown",
	})
	return base64.StdEncoding.EncodeToString(raw)
}()

// Headers returns the fixed header set derived from creds.
func Headers(creds Credentials) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+creds.AccessToken)
	h.Set("X-Riot-Entitlements-JWT", creds.EntitlementsToken)
	h.Set("X-Riot-ClientPlatform", platformHeader)
	if creds.ClientVersion != "" {
		h.Set("X-Riot-ClientVersion", creds.ClientVersion)
	}
	return h
}
