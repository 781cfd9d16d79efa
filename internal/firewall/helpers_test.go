package firewall

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/mock"

	"grimm.is/allowsync/internal/allowlist"
)

func securityGroup(id string, perms ...types.IpPermission) types.SecurityGroup {
	return types.SecurityGroup{
		GroupId:       aws.String(id),
		GroupName:     aws.String(id + "-name"),
		Description:   aws.String("managed by terraform"),
		OwnerId:       aws.String("123456789012"),
		VpcId:         aws.String("vpc-1"),
		IpPermissions: perms,
		Tags:          []types.Tag{{Key: aws.String(DefaultTagKey), Value: aws.String("okta")}},
	}
}

func block(description string, cidrs ...string) types.IpPermission {
	perm := types.IpPermission{
		IpProtocol:       aws.String("tcp"),
		FromPort:         aws.Int32(443),
		ToPort:           aws.Int32(443),
		PrefixListIds:    []types.PrefixListId{{PrefixListId: aws.String("pl-1")}},
		UserIdGroupPairs: []types.UserIdGroupPair{{GroupId: aws.String("sg-peer")}},
	}
	for _, c := range cidrs {
		perm.IpRanges = append(perm.IpRanges, types.IpRange{CidrIp: aws.String(c), Description: aws.String(description)})
	}
	return perm
}

func groupRef(id string, perms ...types.IpPermission) GroupRef {
	return groupRefFrom(securityGroup(id, perms...))
}

func entries(marker string, cidrs ...string) []allowlist.Entry {
	out := make([]allowlist.Entry, len(cidrs))
	for i, c := range cidrs {
		out[i] = allowlist.Entry{CIDR: c, Description: marker}
	}
	return out
}

func expectRevoke(m *MockEC2, groupID string, err error) *mock.Call {
	if err != nil {
		return m.On("RevokeSecurityGroupIngress", mock.Anything, RevokeFor(groupID)).Return(nil, err)
	}
	return m.On("RevokeSecurityGroupIngress", mock.Anything, RevokeFor(groupID)).
		Return(&ec2.RevokeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil)
}

func expectAuthorize(m *MockEC2, groupID string, err error) *mock.Call {
	if err != nil {
		return m.On("AuthorizeSecurityGroupIngress", mock.Anything, AuthorizeFor(groupID)).Return(nil, err)
	}
	return m.On("AuthorizeSecurityGroupIngress", mock.Anything, AuthorizeFor(groupID)).
		Return(&ec2.AuthorizeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil)
}
