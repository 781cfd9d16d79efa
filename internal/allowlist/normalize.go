package allowlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/netip"

	"grimm.is/allowsync/internal/site"
)

// Rule set constants. Every entry is installed as TCP 443 ingress.
const (
	Protocol = "tcp"
	Port     = 443

	// AutomatedPrefix starts every marker. The purger only touches ranges whose
	// description carries it.
	AutomatedPrefix = "**AUTOMATED **"

	IdentityProviderMarker = AutomatedPrefix + " OKTA IP for Auth"
	CodeHostMarker         = AutomatedPrefix + " GITHUB IP for Auth"

	// MaxIdentityProviderEntries is the per-permission-block rule limit. Only the
	// identity provider path is truncated to it.
	MaxIdentityProviderEntries = 50
)

// codeHostCategories is the fixed set of code host categories that carry
// inbound HTTPS traffic for this deployment. Other categories (api, web, ...)
// are ignored.
var codeHostCategories = map[string]bool{
	"git":   true,
	"hooks": true,
	"pages": true,
}

// CodeHostCategories returns the categories extracted from the code host payload.
func CodeHostCategories() []string {
	return []string{"git", "hooks", "pages"}
}

// Entry is one allow rule. Entries are comparable; equal entries are duplicates.
type Entry struct {
	CIDR        string
	Description string
}

// IsIPv6 reports whether the entry holds an IPv6 prefix. IPv4-mapped
// prefixes count as IPv6; Normalize unmaps the ones that fit in IPv4.
func (e Entry) IsIPv6() bool {
	p, err := netip.ParsePrefix(e.CIDR)
	return err == nil && p.Addr().Is6()
}

// canonicalCIDR rewrites an IPv4-mapped prefix of /96 or longer as plain IPv4
// (::ffff:1.2.3.0/120 -> 1.2.3.0/24). Everything else is kept as written.
func canonicalCIDR(raw string, p netip.Prefix) string {
	if !p.Addr().Is4In6() || p.Bits() < 96 {
		return raw
	}
	return netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96).String()
}

// Result is the normalized rule set for one site.
type Result struct {
	Site    site.Site
	Marker  string
	Entries []Entry
	// Invalid counts candidates that were not CIDR prefixes.
	Invalid []string
	// Truncated counts unique entries discarded by the capacity limit.
	Truncated int
}

// ErrMalformedPayload means the body does not have the provider's shape.
var ErrMalformedPayload = errors.New("malformed allowlist payload")

// Marker returns the automated description for s.
func Marker(s site.Site) (string, bool) {
	switch s {
	case site.IdentityProvider:
		return IdentityProviderMarker, true
	case site.CodeHost:
		return CodeHostMarker, true
	}
	return "", false
}

// Normalize flattens a provider payload into a deduplicated rule set.
func Normalize(raw *Raw) (*Result, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedPayload)
	}
	marker, ok := Marker(raw.Site)
	if !ok {
		return nil, ErrUnsupportedSite
	}

	var (
		candidates []string
		err        error
	)
	switch raw.Site {
	case site.IdentityProvider:
		candidates, err = flattenNested(raw.Body)
	case site.CodeHost:
		candidates, err = extractCategories(raw.Body, codeHostCategories)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, raw.Site, err)
	}

	res := &Result{Site: raw.Site, Marker: marker}
	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			res.Invalid = append(res.Invalid, c)
			continue
		}
		entries = append(entries, Entry{CIDR: canonicalCIDR(c, p), Description: marker})
	}

	entries = Dedup(entries)
	if raw.Site == site.IdentityProvider {
		entries, res.Truncated = Limit(entries, MaxIdentityProviderEntries)
	}
	res.Entries = entries
	return res, nil
}

// Dedup drops repeated values, keeping the first occurrence and input order.
func Dedup[T comparable](in []T) []T {
	if in == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Limit keeps the first n values and reports how many were dropped.
func Limit[T any](in []T, n int) ([]T, int) {
	if len(in) <= n {
		return in, 0
	}
	return in[:n], len(in) - n
}

// flattenNested returns every string leaf in document order, at any depth.
// Object keys are ignored.
func flattenNested(body []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var out []string
	if err := walkStrings(dec, &out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after document")
	}
	return out, nil
}

func walkStrings(dec *json.Decoder, out *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			for dec.More() {
				if _, err := dec.Token(); err != nil {
					return err
				}
				if err := walkStrings(dec, out); err != nil {
					return err
				}
			}
		case '[':
			for dec.More() {
				if err := walkStrings(dec, out); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return err
		}
	case string:
		*out = append(*out, v)
	}
	return nil
}

// extractCategories reads a flat object and returns the strings of the wanted
// categories, in document order.
func extractCategories(body []byte, wanted map[string]bool) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var out []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		if !wanted[key] {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		var cidrs []string
		if err := dec.Decode(&cidrs); err != nil {
			return nil, fmt.Errorf("category %q: %w", key, err)
		}
		out = append(out, cidrs...)
	}
	return out, nil
}
