// Package firewall reconciles EC2 security group ingress for allowsync.
//
// # Overview
//
// Security groups opt in with the tag t_whitelist=<site>. For each tagged group
// the package revokes the automated rules it installed on a previous run and
// authorizes the fresh rule set produced by the allowlist package.
//
// # Architecture
//
//	Resolver → []GroupRef → Purger (revoke) → Applier (authorize) → EC2
//
// # Key Types
//
//   - [EC2API]: the three EC2 calls used; satisfied by *ec2.Client, [DryRunEC2] and [MockEC2]
//   - [Resolver]: tag-based discovery of target groups
//   - [Purger]: revokes the automated ranges of each group's first permission block
//   - [Applier]: authorizes one TCP 443 permission block per group
//
// # Failure isolation
//
// Discovery failures are fatal and returned as [DiscoveryError]. Revoke and
// authorize failures are per group ([PurgeError], [ApplyError]): they are logged,
// recorded in the [GroupResult] and never stop the remaining groups.
//
// # Mutation window
//
// Revoke and authorize are two separate calls with no transaction. Between them
// the group has no automated allow rules, and two concurrent runs against one
// group can interleave. Callers must run at most one reconciliation per site at
// a time.
package firewall
