package firewall

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/stretchr/testify/mock"
)

// MockEC2 is a testify mock of EC2API.
type MockEC2 struct {
	mock.Mock
}

// NewMockEC2 creates a new mock EC2 client.
func NewMockEC2() *MockEC2 {
	return &MockEC2{}
}

func (m *MockEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ec2.DescribeSecurityGroupsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEC2) RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ec2.RevokeSecurityGroupIngressOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEC2) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ec2.AuthorizeSecurityGroupIngressOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

// RevokeFor matches a revoke call for groupID.
func RevokeFor(groupID string) any {
	return mock.MatchedBy(func(in *ec2.RevokeSecurityGroupIngressInput) bool {
		return in.GroupId != nil && *in.GroupId == groupID
	})
}

// AuthorizeFor matches an authorize call for groupID.
func AuthorizeFor(groupID string) any {
	return mock.MatchedBy(func(in *ec2.AuthorizeSecurityGroupIngressInput) bool {
		return in.GroupId != nil && *in.GroupId == groupID
	})
}
