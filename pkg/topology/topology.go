/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/clolc/fablogen/pkg/hooks"
	"github.com/clolc/fablogen/pkg/logging"
	"github.com/clolc/fablogen/pkg/utils/errors"
)

var logger = logging.MustGetLogger("fablogen.topology")

const (
	ordererGroupName = "group1"
	ordererPrefix    = "orderer"
)

// MemberOrgName returns the name of the i-th member organization, starting at 1.
func MemberOrgName(i int) string {
	return "Org" + strconv.Itoa(i)
}

// AuditorOrgName returns the name of the j-th auditor organization, starting at 1.
func AuditorOrgName(j int) string {
	return "Aud" + strconv.Itoa(j)
}

// OrgDomain returns the domain of a peer organization.
func OrgDomain(name string) string {
	return strings.ToLower(name) + ".example.com"
}

// PeerNames returns peer0 ... peer{n-1}.
func PeerNames(n int) []string {
	peers := make([]string, n)
	for i := range peers {
		peers[i] = fmt.Sprintf("peer%d", i)
	}
	return peers
}

// Build returns the network configuration described by p. It has no side
// effects and shares no state between calls. Invalid parameters are reported
// before anything is constructed.
func Build(p Params) (*Configuration, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ordererType, _ := ParseOrdererType(p.OrdererType)

	b := &builder{}
	orderers := &OrdererGroup{
		GroupName: ordererGroupName,
		Prefix:    ordererPrefix,
		Type:      ordererType,
		Instances: p.Orderers,
	}
	if p.OrdererPlacement == Dedicated {
		b.addOrdererOrganization(p.OrdererOrgName, p.OrdererOrgDomain, orderers)
	}
	for i := 1; i <= p.Orgs; i++ {
		org := b.addOrganization(MemberOrgName(i), p.Peers)
		if i == 1 && p.OrdererPlacement == FirstOrg {
			org.Orderers = []*OrdererGroup{orderers}
		}
	}
	for j := 1; j <= p.Auditors; j++ {
		b.addOrganization(AuditorOrgName(j), p.Peers)
	}

	policy := EndorsementPolicy(b.endorsers...)
	if err := ValidatePolicy(policy); err != nil {
		return nil, errors.NewValidationError("endorsement", policy, "%s", err)
	}

	initCtor, err := ctor(p.InitArgs)
	if err != nil {
		return nil, errors.NewArgumentError("init-args", p.InitArgs, "%s", err)
	}
	chaincodes := make([]*Chaincode, p.ChaincodeCount)
	for i := range chaincodes {
		chaincodes[i] = &Chaincode{
			Name:        chaincodeName(p.ChaincodeName, i, p.ChaincodeCount),
			Version:     p.ChaincodeVersion,
			Lang:        p.ChaincodeLang,
			Channel:     p.Channel,
			Init:        initCtor,
			Endorsement: policy,
			Directory:   p.ChaincodeDir,
		}
	}

	postGenerate, err := hooks.Render(hooks.Params{
		EnvFile:              p.EnvFile,
		FabricVersion:        p.FabricVersion,
		DesiredFabricVersion: p.DesiredFabricVersion,
		CAVersion:            p.CAVersion,
		DesiredCAVersion:     p.DesiredCAVersion,
	})
	if err != nil {
		return nil, errors.NewArgumentError("hooks.postGenerate", p.EnvFile, "%s", err)
	}

	c := &Configuration{
		Schema: p.Schema,
		Global: Global{
			FabricVersion: p.FabricVersion,
			TLS:           p.TLS,
		},
		Orgs: b.orgs,
		Channels: []*Channel{{
			Name: p.Channel,
			Orgs: b.members,
		}},
		Chaincodes: chaincodes,
	}
	if len(postGenerate) != 0 {
		c.Hooks = &Hooks{PostGenerate: postGenerate}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger.Debugf("built topology with [%d] organizations, [%d] chaincodes, endorsement [%s]", len(c.Orgs), len(c.Chaincodes), policy)
	return c, nil
}

// builder accumulates the organizations of a single Build call.
type builder struct {
	orgs      []*Org
	members   []*ChannelOrg
	endorsers []string
}

func (b *builder) addOrdererOrganization(name, domain string, orderers *OrdererGroup) {
	b.orgs = append(b.orgs, &Org{
		Organization: Organization{Name: name, Domain: domain},
		Orderers:     []*OrdererGroup{orderers},
	})
}

// addOrganization adds a peer organization, joins all of its peers to the
// channel and makes it an endorser.
func (b *builder) addOrganization(name string, peers int) *Org {
	o := &Org{
		Organization: Organization{Name: name, Domain: OrgDomain(name)},
		Peer:         &Peer{Instances: peers},
	}
	b.orgs = append(b.orgs, o)
	b.members = append(b.members, &ChannelOrg{Name: name, Peers: PeerNames(peers)})
	b.endorsers = append(b.endorsers, name)
	return o
}

func chaincodeName(name string, i, count int) string {
	if count == 1 {
		return name
	}
	return name + strconv.Itoa(i)
}

// ctor renders the chaincode init invocation, empty if there are no arguments.
func ctor(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(struct {
		Args []string `json:"Args"`
	}{Args: args})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
