// Package site defines the providers whose published IP ranges can be
// reconciled, and parses invocation input into a closed set of requests.
package site

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Site identifies a provider. The value doubles as the t_whitelist tag value.
type Site string

const (
	// IdentityProvider publishes nested group -> name -> CIDR list JSON.
	IdentityProvider Site = "okta"
	// CodeHost publishes a flat category -> CIDR list JSON object.
	CodeHost Site = "github"
)

// UnsupportedOutcome is reported for any site that is not one of the known values.
const UnsupportedOutcome = "Site not yet Supported!"

// All returns the supported sites in a stable order.
func All() []Site {
	return []Site{IdentityProvider, CodeHost}
}

// Valid reports whether s is a known site.
func (s Site) Valid() bool {
	return s == IdentityProvider || s == CodeHost
}

func (s Site) String() string {
	return string(s)
}

// Event is the raw invocation payload.
type Event struct {
	Site string `json:"site"`
}

// Request is the parsed form of an Event. The concrete type is one of
// IdentityProviderRequest, CodeHostRequest or UnsupportedRequest.
type Request interface {
	// Site returns the target site, or "" for UnsupportedRequest.
	Site() Site
	isRequest()
}

// IdentityProviderRequest reconciles groups tagged for the identity provider.
type IdentityProviderRequest struct{}

// CodeHostRequest reconciles groups tagged for the code host.
type CodeHostRequest struct{}

// UnsupportedRequest carries the unrecognized input verbatim.
type UnsupportedRequest struct {
	Raw string
}

func (IdentityProviderRequest) Site() Site { return IdentityProvider }
func (CodeHostRequest) Site() Site         { return CodeHost }
func (UnsupportedRequest) Site() Site      { return "" }

func (IdentityProviderRequest) isRequest() {}
func (CodeHostRequest) isRequest()         {}
func (UnsupportedRequest) isRequest()      {}

// ParseEvent maps an event to a Request. Matching is exact: "Okta" is unsupported.
func ParseEvent(e Event) Request {
	switch Site(e.Site) {
	case IdentityProvider:
		return IdentityProviderRequest{}
	case CodeHost:
		return CodeHostRequest{}
	default:
		return UnsupportedRequest{Raw: e.Site}
	}
}

// ParseName maps a bare site name to a Request.
func ParseName(name string) Request {
	return ParseEvent(Event{Site: name})
}

// Decode parses a JSON event body. Only malformed JSON is an error; a missing or
// unknown site decodes to UnsupportedRequest.
func Decode(data []byte) (Request, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return UnsupportedRequest{}, nil
	}
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return ParseEvent(e), nil
}
