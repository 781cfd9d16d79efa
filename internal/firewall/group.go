package firewall

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"grimm.is/allowsync/internal/allowlist"
)

// DefaultTagKey is the tag that opts a security group into reconciliation.
const DefaultTagKey = "t_whitelist"

// GroupRef is a security group discovered for one run. It is never persisted.
type GroupRef struct {
	ID   string
	Name string
	// Permissions is the installed ingress as described, bookkeeping included.
	Permissions []types.IpPermission
}

func groupRefFrom(sg types.SecurityGroup) GroupRef {
	return GroupRef{
		ID:          aws.ToString(sg.GroupId),
		Name:        aws.ToString(sg.GroupName),
		Permissions: sg.IpPermissions,
	}
}

// Action is what happened to a group in one step.
type Action string

const (
	ActionRevoked    Action = "revoked"
	ActionAuthorized Action = "authorized"
	ActionSkipped    Action = "skipped"
	ActionFailed     Action = "failed"
)

// GroupResult is the outcome of one step for one group.
type GroupResult struct {
	GroupID string `json:"group_id"`
	Action  Action `json:"action"`
	// Ranges is the number of CIDR ranges revoked or authorized.
	Ranges int    `json:"ranges"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

func isAutomated(description *string) bool {
	return strings.HasPrefix(aws.ToString(description), allowlist.AutomatedPrefix)
}
