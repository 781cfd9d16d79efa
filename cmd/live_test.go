package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/allowsync/internal/allowlist"
	"grimm.is/allowsync/internal/config"
	"grimm.is/allowsync/internal/firewall"
	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/site"
	"grimm.is/allowsync/internal/testutil"
)

func TestLive_ResolveTaggedGroups(t *testing.T) {
	testutil.RequireAWS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewEC2Client(ctx, config.DefaultRegion)
	require.NoError(t, err)

	groups, err := firewall.NewResolver(client, "", logging.Discard()).Resolve(ctx, site.IdentityProvider.String())
	require.NoError(t, err)
	for _, g := range groups {
		assert.NotEmpty(t, g.ID)
	}
}

func TestLive_ProviderPayloadsNormalize(t *testing.T) {
	testutil.RequireNetwork(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f := allowlist.NewFetcher(allowlist.DefaultEndpoints(), logging.Discard())
	for _, s := range site.All() {
		raw, err := f.Fetch(ctx, s)
		require.NoError(t, err, s)

		res, err := allowlist.Normalize(raw)
		require.NoError(t, err, s)
		assert.NotEmpty(t, res.Entries, s)
		if s == site.IdentityProvider {
			assert.LessOrEqual(t, len(res.Entries), allowlist.MaxIdentityProviderEntries)
		}
	}
}
