/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"fmt"
	"strings"

	"github.com/clolc/fablogen/pkg/utils/errors"
)

// Validate checks the cross-references of c: channel members and endorsers
// must be declared peer organizations, channel peers must exist, and every
// chaincode endorsement must name each member of its channel exactly once.
func (c *Configuration) Validate() error {
	if len(c.Global.FabricVersion) == 0 {
		return errors.NewValidationError("global.fabricVersion", c.Global.FabricVersion, "must not be empty")
	}

	orgs := map[string]*Org{}
	domains := map[string]string{}
	for i, o := range c.Orgs {
		field := fmt.Sprintf("orgs[%d].organization", i)
		name, domain := o.Organization.Name, o.Organization.Domain
		if len(name) == 0 {
			return errors.NewValidationError(field+".name", name, "must not be empty")
		}
		if _, ok := orgs[name]; ok {
			return errors.NewValidationError(field+".name", name, "duplicate organization")
		}
		if len(domain) == 0 {
			return errors.NewValidationError(field+".domain", domain, "must not be empty")
		}
		if other, ok := domains[strings.ToLower(domain)]; ok {
			return errors.NewValidationError(field+".domain", domain, "already used by [%s]", other)
		}
		if o.OrdererOnly() && len(o.Orderers) == 0 {
			return errors.NewValidationError(fmt.Sprintf("orgs[%d]", i), name, "runs neither peers nor orderers")
		}
		if o.PeerCount() < 0 {
			return errors.NewValidationError(fmt.Sprintf("orgs[%d].peer.instances", i), o.PeerCount(), "must not be negative")
		}
		for k, g := range o.Orderers {
			if typ, ok := ParseOrdererType(string(g.Type)); !ok || typ != g.Type {
				return errors.NewValidationError(fmt.Sprintf("orgs[%d].orderers[%d].type", i, k), g.Type, "supported types are %s", supportedTypesString())
			}
			if g.Instances < 1 {
				return errors.NewValidationError(fmt.Sprintf("orgs[%d].orderers[%d].instances", i, k), g.Instances, "at least one orderer is required")
			}
		}
		orgs[name] = o
		domains[strings.ToLower(domain)] = name
	}

	members := map[string][]string{}
	for i, ch := range c.Channels {
		if len(ch.Name) == 0 {
			return errors.NewValidationError(fmt.Sprintf("channels[%d].name", i), ch.Name, "must not be empty")
		}
		if _, ok := members[ch.Name]; ok {
			return errors.NewValidationError(fmt.Sprintf("channels[%d].name", i), ch.Name, "duplicate channel")
		}
		joined := map[string]bool{}
		var names []string
		for k, m := range ch.Orgs {
			field := fmt.Sprintf("channels[%d].orgs[%d]", i, k)
			org, ok := orgs[m.Name]
			if !ok {
				return errors.NewValidationError(field+".name", m.Name, "organization not declared")
			}
			if org.OrdererOnly() {
				return errors.NewValidationError(field+".name", m.Name, "organization runs no peers")
			}
			if joined[m.Name] {
				return errors.NewValidationError(field+".name", m.Name, "organization joined twice")
			}
			joined[m.Name] = true
			names = append(names, m.Name)

			valid := map[string]bool{}
			for _, p := range PeerNames(org.PeerCount()) {
				valid[p] = true
			}
			for _, p := range m.Peers {
				if !valid[p] {
					return errors.NewValidationError(field+".peers", p, "organization [%s] runs [%d] peers", m.Name, org.PeerCount())
				}
			}
		}
		members[ch.Name] = names
	}

	for i, cc := range c.Chaincodes {
		field := fmt.Sprintf("chaincodes[%d]", i)
		if c.Channel(cc.Channel) == nil {
			return errors.NewValidationError(field+".channel", cc.Channel, "channel not declared")
		}
		names := members[cc.Channel]
		if err := ValidatePolicy(cc.Endorsement); err != nil {
			return errors.NewValidationError(field+".endorsement", cc.Endorsement, "%s", err)
		}
		expected := map[string]bool{}
		for _, name := range names {
			expected[orgs[name].Organization.MSPID()] = true
		}
		seen := map[string]bool{}
		ids := PolicyMSPIDs(cc.Endorsement)
		for _, id := range ids {
			if !expected[id] {
				return errors.NewValidationError(field+".endorsement", cc.Endorsement, "principal [%s] is not a member of channel [%s]", id, cc.Channel)
			}
			if seen[id] {
				return errors.NewValidationError(field+".endorsement", cc.Endorsement, "principal [%s] appears twice", id)
			}
			seen[id] = true
		}
		if len(seen) != len(expected) {
			return errors.NewValidationError(field+".endorsement", cc.Endorsement, "expected one member principal per channel organization, got %s", describePrincipals(ids))
		}
	}
	return nil
}
