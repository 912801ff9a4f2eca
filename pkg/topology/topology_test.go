/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clolc/fablogen/pkg/utils/errors"
)

func params(orgs, auditors, peers int) Params {
	p := DefaultParams()
	p.Orgs = orgs
	p.Auditors = auditors
	p.Peers = peers
	return p
}

func orgNames(c *Configuration) []string {
	var names []string
	for _, o := range c.Orgs {
		names = append(names, o.Organization.Name)
	}
	return names
}

func TestBuildOneOrgOneAuditor(t *testing.T) {
	c, err := Build(params(1, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"Orderer-group-owner", "Org1", "Aud1"}, orgNames(c))
	assert.Equal(t, "root.com", c.Orgs[0].Organization.Domain)
	assert.Equal(t, "org1.example.com", c.Orgs[1].Organization.Domain)
	assert.Equal(t, "aud1.example.com", c.Orgs[2].Organization.Domain)

	assert.True(t, c.Orgs[0].OrdererOnly())
	assert.Equal(t, []*OrdererGroup{{GroupName: "group1", Prefix: "orderer", Type: Raft, Instances: 3}}, c.Orgs[0].Orderers)
	assert.Empty(t, c.Orgs[1].Orderers)

	require.Len(t, c.Channels, 1)
	assert.Equal(t, "mychannel", c.Channels[0].Name)
	assert.Equal(t, []*ChannelOrg{
		{Name: "Org1", Peers: []string{"peer0"}},
		{Name: "Aud1", Peers: []string{"peer0"}},
	}, c.Channels[0].Orgs)

	require.Len(t, c.Chaincodes, 1)
	cc := c.Chaincodes[0]
	assert.Equal(t, "AND('Org1MSP.member', 'Aud1MSP.member')", cc.Endorsement)
	assert.Equal(t, "mychannel", cc.Channel)
	assert.Equal(t, "0.1.0", cc.Version)
	assert.Equal(t, "golang", cc.Lang)
	assert.Empty(t, cc.Init)

	assert.Equal(t, Global{FabricVersion: "2.4.3", TLS: true}, c.Global)
	assert.Equal(t, DefaultSchema, c.Schema)
	require.NotNil(t, c.Hooks)
	assert.Equal(t,
		"perl -i -pe 's/_VERSION=2.4.3/_VERSION=2.5.3/g' ./fablo-target/fabric-docker/.env; "+
			"perl -i -pe 's/FABRIC_CA_VERSION=1.5.0/FABRIC_CA_VERSION=1.5.6/g' ./fablo-target/fabric-docker/.env",
		c.Hooks.PostGenerate)

	require.NoError(t, c.Validate())
}

func TestBuildTwoOrgsTwoPeers(t *testing.T) {
	c, err := Build(params(2, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, "AND('Org1MSP.member', 'Org2MSP.member')", c.Chaincodes[0].Endorsement)
	for _, m := range c.Channels[0].Orgs {
		assert.Equal(t, []string{"peer0", "peer1"}, m.Peers, m.Name)
	}
	assert.Equal(t, 2, c.Org("Org2").PeerCount())
	require.NoError(t, c.Validate())
}

func TestEndorsementTerms(t *testing.T) {
	for orgs := 1; orgs <= 4; orgs++ {
		for auditors := 0; auditors <= 3; auditors++ {
			c, err := Build(params(orgs, auditors, 1))
			require.NoError(t, err)

			var want []string
			for i := 1; i <= orgs; i++ {
				want = append(want, fmt.Sprintf("'Org%dMSP.member'", i))
			}
			for j := 1; j <= auditors; j++ {
				want = append(want, fmt.Sprintf("'Aud%dMSP.member'", j))
			}

			policy := c.Chaincodes[0].Endorsement
			require.True(t, strings.HasPrefix(policy, "AND("), policy)
			require.True(t, strings.HasSuffix(policy, ")"), policy)
			terms := strings.Split(strings.TrimSuffix(strings.TrimPrefix(policy, "AND("), ")"), ", ")
			assert.Equal(t, want, terms)
			assert.NotContains(t, policy, ", )")
			assert.NotContains(t, policy, "Orderer-group-owner")
		}
	}
}

func TestChannelMembersAreDeclared(t *testing.T) {
	c, err := Build(params(3, 2, 3))
	require.NoError(t, err)

	var members []string
	for _, m := range c.Channels[0].Orgs {
		members = append(members, m.Name)
		assert.Equal(t, PeerNames(3), m.Peers)
	}
	assert.Equal(t, c.PeerOrgNames(), members)
	assert.Equal(t, []string{"Org1", "Org2", "Org3", "Aud1", "Aud2"}, members)
}

func TestBuildZeroPeers(t *testing.T) {
	c, err := Build(params(1, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, &Peer{Instances: 0}, c.Org("Org1").Peer)
	assert.Empty(t, c.Channels[0].Orgs[0].Peers)
	assert.Equal(t, "AND('Org1MSP.member', 'Aud1MSP.member')", c.Chaincodes[0].Endorsement)
	require.NoError(t, c.Validate())
}

func TestBuildFirstOrgPlacement(t *testing.T) {
	p := params(1, 1, 1)
	p.OrdererPlacement = FirstOrg

	c, err := Build(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"Org1", "Aud1"}, orgNames(c))
	org1 := c.Org("Org1")
	assert.Equal(t, &Peer{Instances: 1}, org1.Peer)
	assert.Equal(t, []*OrdererGroup{{GroupName: "group1", Prefix: "orderer", Type: Raft, Instances: 3}}, org1.Orderers)
	assert.Equal(t, "AND('Org1MSP.member', 'Aud1MSP.member')", c.Chaincodes[0].Endorsement)
	require.NoError(t, c.Validate())
}

func TestBuildChaincodes(t *testing.T) {
	p := params(1, 1, 1)
	p.ChaincodeName = "auti-local-chain"
	p.ChaincodeDir = "contract/local_chain"
	p.ChaincodeCount = 3
	p.InitArgs = []string{"init", "a"}

	c, err := Build(p)
	require.NoError(t, err)

	require.Len(t, c.Chaincodes, 3)
	for i, cc := range c.Chaincodes {
		assert.Equal(t, fmt.Sprintf("auti-local-chain%d", i), cc.Name)
		assert.Equal(t, "contract/local_chain", cc.Directory)
		assert.Equal(t, `{"Args":["init","a"]}`, cc.Init)
		assert.Equal(t, "AND('Org1MSP.member', 'Aud1MSP.member')", cc.Endorsement)
	}
	require.NoError(t, c.Validate())
}

func TestBuildWithoutMigration(t *testing.T) {
	p := params(1, 0, 1)
	p.DesiredFabricVersion = ""
	p.DesiredCAVersion = ""
	p.Schema = ""

	c, err := Build(p)
	require.NoError(t, err)
	assert.Nil(t, c.Hooks)

	raw, err := Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hooks")
	assert.NotContains(t, string(raw), "$schema")
}

func TestOrdererTypeSpelling(t *testing.T) {
	for in, want := range map[string]OrdererType{"RAFT": Raft, "raft": Raft, "bft": BFT, "Solo": Solo} {
		p := params(1, 0, 1)
		p.OrdererType = in
		if want == Solo {
			p.Orderers = 1
		}
		c, err := Build(p)
		require.NoError(t, err, in)
		assert.Equal(t, want, c.Orgs[0].Orderers[0].Type, in)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *Params)
		field    string
		argument bool
	}{
		{name: "no organizations", mutate: func(p *Params) { p.Orgs = 0 }, field: "num-orgs"},
		{name: "negative organizations", mutate: func(p *Params) { p.Orgs = -1 }, field: "num-orgs"},
		{name: "negative auditors", mutate: func(p *Params) { p.Auditors = -1 }, field: "num-auditors"},
		{name: "negative peers", mutate: func(p *Params) { p.Peers = -2 }, field: "num-peers"},
		{name: "no orderers", mutate: func(p *Params) { p.Orderers = 0 }, field: "num-orderers"},
		{name: "unsupported orderer type", mutate: func(p *Params) { p.OrdererType = "kafka" }, field: "orderer-type"},
		{name: "solo with three orderers", mutate: func(p *Params) { p.OrdererType = "solo" }, field: "num-orderers"},
		{name: "unknown placement", mutate: func(p *Params) { p.OrdererPlacement = "elsewhere" }, field: "orderer-placement"},
		{name: "orderer org clashes", mutate: func(p *Params) { p.OrdererOrgName = "Org1" }, field: "orderer-org-name"},
		{name: "orderer domain clashes", mutate: func(p *Params) { p.OrdererOrgDomain = "org1.example.com" }, field: "orderer-org-domain"},
		{name: "orderer domain clashes with auditor", mutate: func(p *Params) { p.OrdererOrgDomain = "AUD1.example.com" }, field: "orderer-org-domain"},
		{name: "no chaincode", mutate: func(p *Params) { p.ChaincodeCount = 0 }, field: "chaincode-count"},
		{name: "empty orderer org", mutate: func(p *Params) { p.OrdererOrgName = "" }, field: "orderer-org-name", argument: true},
		{name: "empty channel", mutate: func(p *Params) { p.Channel = " " }, field: "channel", argument: true},
		{name: "empty chaincode name", mutate: func(p *Params) { p.ChaincodeName = "" }, field: "chaincode-name", argument: true},
		{name: "empty fabric version", mutate: func(p *Params) { p.FabricVersion = "" }, field: "fabric-version", argument: true},
		{name: "malformed desired version", mutate: func(p *Params) { p.DesiredFabricVersion = "latest" }, field: "desired-fabric-version", argument: true},
		{name: "desired ca without current", mutate: func(p *Params) { p.CAVersion = "" }, field: "ca-version", argument: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(1, 1, 1)
			tt.mutate(&p)

			c, err := Build(p)
			require.Error(t, err)
			assert.Nil(t, c)

			if tt.argument {
				ae, ok := errors.AsArgument(err)
				require.True(t, ok, err.Error())
				assert.Equal(t, tt.field, ae.Field)
				assert.True(t, errors.HasCause(err, errors.ErrArgument))
			} else {
				ve, ok := errors.AsValidation(err)
				require.True(t, ok, err.Error())
				assert.Equal(t, tt.field, ve.Field)
				assert.True(t, errors.HasCause(err, errors.ErrValidation))
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	p := params(3, 2, 2)
	p.InitArgs = []string{"init"}

	c1, err := Build(p)
	require.NoError(t, err)
	c2, err := Build(p)
	require.NoError(t, err)

	raw1, err := Marshal(c1)
	require.NoError(t, err)
	raw2, err := Marshal(c2)
	require.NoError(t, err)
	assert.Equal(t, string(raw1), string(raw2))

	parsed, err := Unmarshal(raw1)
	require.NoError(t, err)
	if diff := cmp.Diff(c1, parsed, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-built +parsed):\n%s", diff)
	}
	require.NoError(t, parsed.Validate())
}

func TestMarshalKeyOrder(t *testing.T) {
	c, err := Build(params(1, 1, 1))
	require.NoError(t, err)
	raw, err := Marshal(c)
	require.NoError(t, err)
	doc := string(raw)

	last := -1
	for _, key := range []string{"$schema:", "global:", "orgs:", "channels:", "chaincodes:", "hooks:"} {
		idx := strings.Index(doc, key)
		require.True(t, idx > last, "key %s out of order in\n%s", key, doc)
		last = idx
	}
	assert.Contains(t, doc, "endorsement: AND('Org1MSP.member', 'Aud1MSP.member')")
	assert.Contains(t, doc, "fabricVersion: 2.4.3")
}

func TestUnmarshalRejectsUnknownKeys(t *testing.T) {
	_, err := Unmarshal([]byte("global:\n  fabricVersion: 2.4.3\nextra: 1\n"))
	assert.Error(t, err)
}

func TestBuildParallel(t *testing.T) {
	want, err := Build(params(2, 2, 2))
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		t.Run(fmt.Sprintf("build-%d", i), func(t *testing.T) {
			t.Parallel()
			got, err := Build(params(2, 2, 2))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDowngrades(t *testing.T) {
	p := DefaultParams()
	assert.Empty(t, p.Downgrades())

	p.DesiredFabricVersion = "2.2.0"
	p.DesiredCAVersion = "1.4.9"
	assert.Equal(t, []string{"fabric 2.4.3 -> 2.2.0", "fabric-ca 1.5.0 -> 1.4.9"}, p.Downgrades())
}
