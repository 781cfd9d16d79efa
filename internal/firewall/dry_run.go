package firewall

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"grimm.is/allowsync/internal/logging"
)

// DryRunEC2 passes describe calls through and records mutations instead of
// sending them.
type DryRunEC2 struct {
	api    EC2API
	logger *logging.Logger

	mu         sync.Mutex
	Revokes    []*ec2.RevokeSecurityGroupIngressInput
	Authorizes []*ec2.AuthorizeSecurityGroupIngressInput
}

// NewDryRunEC2 wraps api. Only DescribeSecurityGroups reaches it.
func NewDryRunEC2(api EC2API, logger *logging.Logger) *DryRunEC2 {
	if logger == nil {
		logger = logging.Default()
	}
	return &DryRunEC2{api: api, logger: logger.WithComponent("dry-run")}
}

func (d *DryRunEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return d.api.DescribeSecurityGroups(ctx, params, optFns...)
}

func (d *DryRunEC2) RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	d.mu.Lock()
	d.Revokes = append(d.Revokes, params)
	d.mu.Unlock()

	for _, p := range params.IpPermissions {
		for _, r := range p.IpRanges {
			d.logger.Info("Would revoke", "group_id", aws.ToString(params.GroupId), "cidr", aws.ToString(r.CidrIp))
		}
		for _, r := range p.Ipv6Ranges {
			d.logger.Info("Would revoke", "group_id", aws.ToString(params.GroupId), "cidr", aws.ToString(r.CidrIpv6))
		}
	}
	return &ec2.RevokeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil
}

func (d *DryRunEC2) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	d.mu.Lock()
	d.Authorizes = append(d.Authorizes, params)
	d.mu.Unlock()

	for _, p := range params.IpPermissions {
		d.logger.Info("Would authorize",
			"group_id", aws.ToString(params.GroupId),
			"protocol", aws.ToString(p.IpProtocol),
			"port", aws.ToInt32(p.FromPort),
			"ipv4_ranges", len(p.IpRanges),
			"ipv6_ranges", len(p.Ipv6Ranges))
	}
	return &ec2.AuthorizeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil
}

// Reset drops the recorded calls and returns how many of each there were.
// Long-running callers reset once per run.
func (d *DryRunEC2) Reset() (revokes, authorizes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	revokes, authorizes = len(d.Revokes), len(d.Authorizes)
	d.Revokes, d.Authorizes = nil, nil
	return revokes, authorizes
}
