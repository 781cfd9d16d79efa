package firewall

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"grimm.is/allowsync/internal/logging"
)

// Purger revokes previously installed automated rules.
//
// Only the first permission block of each group is inspected; later blocks are
// left in place even if they carry automated ranges.
type Purger struct {
	api         EC2API
	concurrency int
	logger      *logging.Logger
}

// NewPurger creates a Purger running at most concurrency groups at once.
func NewPurger(api EC2API, concurrency int, logger *logging.Logger) *Purger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Purger{
		api:         api,
		concurrency: concurrency,
		logger:      logger.WithComponent("purger"),
	}
}

// Purge revokes the automated ranges of every group. It always returns the
// full group list; per-group results are in the same order.
func (p *Purger) Purge(ctx context.Context, groups []GroupRef) ([]GroupRef, []GroupResult) {
	results := make([]GroupResult, len(groups))
	forEachGroup(ctx, p.concurrency, groups, func(ctx context.Context, i int, g GroupRef) {
		results[i] = p.purgeGroup(ctx, g)
	})
	return groups, results
}

func (p *Purger) purgeGroup(ctx context.Context, g GroupRef) GroupResult {
	log := p.logger.With("group_id", g.ID, "group_name", g.Name)

	if len(g.Permissions) == 0 {
		log.Info("No ingress rules found")
		return GroupResult{GroupID: g.ID, Action: ActionSkipped, Reason: "no ingress rules"}
	}

	perm, n := RevokeDescriptor(g.Permissions[0])
	if n == 0 {
		log.Info("First permission block has no automated ranges")
		return GroupResult{GroupID: g.ID, Action: ActionSkipped, Reason: "no automated ranges"}
	}

	log.Info("Revoking automated ingress", "ranges", n, "blocks", len(g.Permissions))
	_, err := p.api.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{
		GroupId:       aws.String(g.ID),
		IpPermissions: []types.IpPermission{perm},
	})
	if err != nil {
		perr := &PurgeError{GroupID: g.ID, Err: err}
		log.Error("Failed to revoke ingress", "error", err, "code", APIErrorCode(err))
		return GroupResult{GroupID: g.ID, Action: ActionFailed, Ranges: n, Reason: err.Error(), Err: perr}
	}

	log.Audit("revoke", g.ID, map[string]any{"ranges": n})
	return GroupResult{GroupID: g.ID, Action: ActionRevoked, Ranges: n}
}

// RevokeDescriptor reduces an installed permission to what a revoke call
// matches on: protocol, ports and the automated IPv4/IPv6 ranges. Security
// group pairs, prefix lists and manually managed ranges are dropped. It returns
// the descriptor and the number of ranges in it.
func RevokeDescriptor(installed types.IpPermission) (types.IpPermission, int) {
	out := types.IpPermission{
		IpProtocol: installed.IpProtocol,
		FromPort:   installed.FromPort,
		ToPort:     installed.ToPort,
	}
	for _, r := range installed.IpRanges {
		if isAutomated(r.Description) {
			out.IpRanges = append(out.IpRanges, types.IpRange{CidrIp: r.CidrIp, Description: r.Description})
		}
	}
	for _, r := range installed.Ipv6Ranges {
		if isAutomated(r.Description) {
			out.Ipv6Ranges = append(out.Ipv6Ranges, types.Ipv6Range{CidrIpv6: r.CidrIpv6, Description: r.Description})
		}
	}
	return out, len(out.IpRanges) + len(out.Ipv6Ranges)
}
