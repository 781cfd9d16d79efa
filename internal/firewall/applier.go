package firewall

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"grimm.is/allowsync/internal/allowlist"
	"grimm.is/allowsync/internal/logging"
)

// Applier authorizes a normalized rule set on each group.
type Applier struct {
	api         EC2API
	concurrency int
	logger      *logging.Logger
}

// NewApplier creates an Applier running at most concurrency groups at once.
func NewApplier(api EC2API, concurrency int, logger *logging.Logger) *Applier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Applier{
		api:         api,
		concurrency: concurrency,
		logger:      logger.WithComponent("applier"),
	}
}

// Apply issues one authorize call per group. Failures are isolated per group
// and nothing is rolled back or retried. An empty rule set makes no calls.
func (a *Applier) Apply(ctx context.Context, groups []GroupRef, entries []allowlist.Entry) []GroupResult {
	results := make([]GroupResult, len(groups))
	if len(entries) == 0 {
		for i, g := range groups {
			results[i] = GroupResult{GroupID: g.ID, Action: ActionSkipped, Reason: "empty rule set"}
		}
		a.logger.Warn("Empty rule set, nothing to authorize", "groups", len(groups))
		return results
	}

	perm := Permission(entries)
	forEachGroup(ctx, a.concurrency, groups, func(ctx context.Context, i int, g GroupRef) {
		results[i] = a.applyGroup(ctx, g, perm, len(entries))
	})
	return results
}

func (a *Applier) applyGroup(ctx context.Context, g GroupRef, perm types.IpPermission, n int) GroupResult {
	log := a.logger.With("group_id", g.ID, "group_name", g.Name)

	_, err := a.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(g.ID),
		IpPermissions: []types.IpPermission{perm},
	})
	if err != nil {
		log.Error("Failed to authorize ingress", "error", err, "code", APIErrorCode(err))
		return GroupResult{GroupID: g.ID, Action: ActionFailed, Ranges: n, Reason: err.Error(), Err: &ApplyError{GroupID: g.ID, Err: err}}
	}

	log.Audit("authorize", g.ID, map[string]any{"ranges": n})
	return GroupResult{GroupID: g.ID, Action: ActionAuthorized, Ranges: n}
}

// Permission builds the TCP 443 ingress block for entries. IPv6 prefixes go to
// Ipv6Ranges; EC2 rejects them in IpRanges.
func Permission(entries []allowlist.Entry) types.IpPermission {
	perm := types.IpPermission{
		IpProtocol: aws.String(allowlist.Protocol),
		FromPort:   aws.Int32(allowlist.Port),
		ToPort:     aws.Int32(allowlist.Port),
	}
	for _, e := range entries {
		if e.IsIPv6() {
			perm.Ipv6Ranges = append(perm.Ipv6Ranges, types.Ipv6Range{
				CidrIpv6:    aws.String(e.CIDR),
				Description: aws.String(e.Description),
			})
			continue
		}
		perm.IpRanges = append(perm.IpRanges, types.IpRange{
			CidrIp:      aws.String(e.CIDR),
			Description: aws.String(e.Description),
		})
	}
	return perm
}
