package airdrop

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Fingerprint derives the stable identity digest for a candidate from its
// platform and normalized source URL. Identical listings across crawl runs
// always map to the same fingerprint; tracking parameters in the query
// string do not change identity.
func Fingerprint(platform, sourceURL string) string {
	content := fmt.Sprintf("%s|%s", strings.ToLower(platform), NormalizeURL(sourceURL))

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// NormalizeURL lower-cases the scheme and host, trims trailing slashes from
// the path and strips query and fragment. Unparseable URLs fall back to a
// lower-cased trim so the digest stays deterministic.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

func (c Candidate) Fingerprint() string {
	return Fingerprint(c.SourcePlatform, c.SourceURL)
}
