package firewall

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// DiscoveryError means the tagged groups could not be listed. Nothing was modified.
type DiscoveryError struct {
	TagKey   string
	TagValue string
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("describe security groups tagged %s=%s: %v", e.TagKey, e.TagValue, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// PurgeError is a failed revoke on one group. The group's stale rules remain.
type PurgeError struct {
	GroupID string
	Err     error
}

func (e *PurgeError) Error() string {
	return fmt.Sprintf("revoke ingress on %s: %v", e.GroupID, e.Err)
}

func (e *PurgeError) Unwrap() error { return e.Err }

// ApplyError is a failed authorize on one group.
type ApplyError struct {
	GroupID string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("authorize ingress on %s: %v", e.GroupID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// APIErrorCode returns the EC2 error code (e.g. InvalidPermission.Duplicate)
// carried by err, or "".
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
