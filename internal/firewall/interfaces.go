package firewall

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// EC2API abstracts the EC2 operations used by the reconciler.
// *ec2.Client satisfies it; tests use MockEC2 and dry runs use DryRunEC2.
type EC2API interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
}

var _ EC2API = (*ec2.Client)(nil)
