// Package safeurl validates URLs and secrets at the service boundary:
// Notion media URLs are checked against a host allowlist before being handed
// to callers, and shared secrets are length-checked before use.
package safeurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MinSecretLen is the minimum acceptable length for shared secrets.
const MinSecretLen = 16

// Notion-hosted media is served from these S3 hosts via signed URLs.
var allowedMediaHosts = []string{
	"prod-files-secure.s3.us-west-2.amazonaws.com",
	"s3.us-west-2.amazonaws.com",
}

// ErrSecretTooShort is returned when a secret does not meet MinSecretLen.
var ErrSecretTooShort = fmt.Errorf("safeurl: secret must be at least %d bytes", MinSecretLen)

// ErrUnsafeScheme is returned when a URL uses a non-HTTPS scheme.
var ErrUnsafeScheme = errors.New("safeurl: only https URLs are allowed")

// ErrHostNotAllowed is returned when a media URL targets a host outside the
// Notion S3 allowlist.
var ErrHostNotAllowed = errors.New("safeurl: media host not in allowlist")

// ValidateSecret checks that secret is at least MinSecretLen bytes.
func ValidateSecret(secret string) error {
	if len(secret) < MinSecretLen {
		return ErrSecretTooShort
	}
	return nil
}

// ValidateMediaURL checks that rawURL is an https URL pointing at a
// Notion media host (exact match or subdomain of an allowed host).
func ValidateMediaURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("safeurl: invalid URL: %w", err)
	}
	if strings.ToLower(u.Scheme) != "https" {
		return ErrUnsafeScheme
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("safeurl: URL has no host")
	}
	for _, allowed := range allowedMediaHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return ErrHostNotAllowed
}
