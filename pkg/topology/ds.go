/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

// DefaultSchema is the Fablo JSON schema the generated documents declare.
const DefaultSchema = "https://github.com/hyperledger-labs/fablo/releases/download/1.1.0/schema.json"

// Configuration is a Fablo network configuration document. Field order is
// the key order of the serialized document.
type Configuration struct {
	Schema     string       `yaml:"$schema,omitempty"`
	Global     Global       `yaml:"global"`
	Orgs       []*Org       `yaml:"orgs"`
	Channels   []*Channel   `yaml:"channels"`
	Chaincodes []*Chaincode `yaml:"chaincodes"`
	Hooks      *Hooks       `yaml:"hooks,omitempty"`
}

type Global struct {
	FabricVersion string `yaml:"fabricVersion"`
	TLS           bool   `yaml:"tls"`
}

// Org is an entry of the orgs list. Peer organizations always carry a Peer
// section, possibly with zero instances; an entry without one owns orderers only.
type Org struct {
	Organization Organization    `yaml:"organization"`
	Peer         *Peer           `yaml:"peer,omitempty"`
	Orderers     []*OrdererGroup `yaml:"orderers,omitempty"`
}

// Organization models the identity of an organization. The MSP ID is
// derived from Name.
type Organization struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
}

type Peer struct {
	Instances int `yaml:"instances"`
}

// OrdererGroup is a group of ordering nodes sharing one consensus type.
type OrdererGroup struct {
	GroupName string      `yaml:"groupName"`
	Prefix    string      `yaml:"prefix"`
	Type      OrdererType `yaml:"type"`
	Instances int         `yaml:"instances"`
}

// Channel associates a channel name with the peers joining it.
type Channel struct {
	Name string        `yaml:"name"`
	Orgs []*ChannelOrg `yaml:"orgs"`
}

// ChannelOrg lists the peers of one organization that join a channel.
type ChannelOrg struct {
	Name  string   `yaml:"name"`
	Peers []string `yaml:"peers"`
}

type Chaincode struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Lang        string `yaml:"lang"`
	Channel     string `yaml:"channel"`
	Init        string `yaml:"init,omitempty"`
	Endorsement string `yaml:"endorsement"`
	Directory   string `yaml:"directory"`
}

type Hooks struct {
	PostGenerate string `yaml:"postGenerate,omitempty"`
}

// MSPID returns the MSP identifier of the organization.
func (o *Organization) MSPID() string {
	return MSPID(o.Name)
}

// PeerCount returns the number of peer instances, zero for orderer-only entries.
func (o *Org) PeerCount() int {
	if o.Peer == nil {
		return 0
	}
	return o.Peer.Instances
}

// OrdererOnly returns true if the organization runs no peers.
func (o *Org) OrdererOnly() bool {
	return o.Peer == nil
}

// Org returns the organization with the passed name, nil if not found.
func (c *Configuration) Org(name string) *Org {
	for _, o := range c.Orgs {
		if o.Organization.Name == name {
			return o
		}
	}
	return nil
}

// PeerOrgNames returns the names of the peer organizations, in document order.
func (c *Configuration) PeerOrgNames() []string {
	var names []string
	for _, o := range c.Orgs {
		if !o.OrdererOnly() {
			names = append(names, o.Organization.Name)
		}
	}
	return names
}

// Channel returns the channel with the passed name, nil if not found.
func (c *Configuration) Channel(name string) *Channel {
	for _, ch := range c.Channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}
