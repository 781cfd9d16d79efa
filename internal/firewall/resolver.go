package firewall

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"grimm.is/allowsync/internal/logging"
)

// Resolver finds the security groups tagged for a site.
type Resolver struct {
	api    EC2API
	tagKey string
	logger *logging.Logger
}

// NewResolver creates a Resolver. An empty tagKey means DefaultTagKey.
func NewResolver(api EC2API, tagKey string, logger *logging.Logger) *Resolver {
	if tagKey == "" {
		tagKey = DefaultTagKey
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		api:    api,
		tagKey: tagKey,
		logger: logger.WithComponent("resolver"),
	}
}

// TagKey returns the discovery tag key.
func (r *Resolver) TagKey() string {
	return r.tagKey
}

// Resolve lists every group whose tag matches value, in API order.
// An empty result is not an error. Any page failure discards the partial list.
func (r *Resolver) Resolve(ctx context.Context, value string) ([]GroupRef, error) {
	input := &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{{
			Name:   aws.String("tag:" + r.tagKey),
			Values: []string{value},
		}},
	}

	var groups []GroupRef
	pages := ec2.NewDescribeSecurityGroupsPaginator(r.api, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, &DiscoveryError{TagKey: r.tagKey, TagValue: value, Err: err}
		}
		for _, sg := range page.SecurityGroups {
			groups = append(groups, groupRefFrom(sg))
		}
	}

	r.logger.Info("Resolved security groups", "tag", r.tagKey+"="+value, "groups", len(groups))
	return groups, nil
}
