package corsproxy

import (
	"time"
)

// HeaderPair is a header name with its value
type HeaderPair struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// Config is the static configuration of a Relay. It's read
// once at start and never modified afterwards, so a single
// value is shared by all the requests being served.
type Config struct {
	// AllowOrigins are the patterns an Origin header must
	// match for the request to be relayed
	AllowOrigins []string `mapstructure:"allow_origins"`
	// DenyTargets are the patterns of target URLs that are
	// never relayed
	DenyTargets []string `mapstructure:"deny_targets"`
	// RequireOrigin denies requests without Origin header,
	// instead of treating them as coming from an allowed
	// origin
	RequireOrigin bool `mapstructure:"require_origin"`

	TargetParam    string `mapstructure:"target_param"`
	OverrideHeader string `mapstructure:"override_header"`
	// ClientIPHeader is the header where the hosting
	// platform puts the caller's address
	ClientIPHeader string `mapstructure:"client_ip_header"`

	// Passthrough are the names of the request headers copied
	// to the outbound request
	Passthrough []string `mapstructure:"passthrough"`
	// Identity are the headers making the outbound request
	// look like one sent by a desktop browser
	Identity []HeaderPair `mapstructure:"identity"`

	MaxAge int `mapstructure:"max_age"`

	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	// ParentProxy is the URL of an HTTP or SOCKS5 proxy used
	// for dialing targets
	ParentProxy string `mapstructure:"parent_proxy"`
	// Interface is the name of the network interface used for
	// dialing targets. The empty string means the OS default.
	Interface string `mapstructure:"interface"`
}

// DefaultConfig allows every origin, denies no target and
// dresses requests as Chrome 131 on Windows
func DefaultConfig() (c *Config) {
	c = &Config{
		AllowOrigins:   []string{".*"},
		DenyTargets:    []string{},
		TargetParam:    "url",
		OverrideHeader: "x-cors-headers",
		ClientIPHeader: "CF-Connecting-IP",
		Passthrough: []string{
			"range", "if-range", "if-none-match",
			"if-modified-since", "cache-control",
		},
		Identity:            DefaultIdentity(),
		MaxAge:              86400,
		FetchTimeout:        30 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
	return
}

// DefaultIdentity returns the synthetic browser headers
func DefaultIdentity() (hs []HeaderPair) {
	hs = []HeaderPair{
		{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/131.0.0.0 Safari/537.36"},
		{"Accept", "*/*"},
		{"Accept-Language", "en-US,en;q=0.9"},
		{"Accept-Encoding", "gzip, deflate, br"},
		{"Referer", "https://hianime.to/"},
		{"Origin", "https://hianime.to"},
		{"Sec-Fetch-Dest", "empty"},
		{"Sec-Fetch-Mode", "cors"},
		{"Sec-Fetch-Site", "cross-site"},
		{"Sec-Ch-Ua", `"Google Chrome";v="131", "Chromium";v="131", ` +
			`"Not_A Brand";v="24"`},
		{"Sec-Ch-Ua-Mobile", "?0"},
		{"Sec-Ch-Ua-Platform", `"Windows"`},
	}
	return
}
