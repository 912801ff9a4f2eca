/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/clolc/fablogen/pkg/hooks"
	"github.com/clolc/fablogen/pkg/utils/errors"
)

// OrdererType is a consensus protocol supported by Fablo.
type OrdererType string

const (
	Solo OrdererType = "solo"
	Raft OrdererType = "raft"
	BFT  OrdererType = "BFT"
)

var supportedOrdererTypes = []OrdererType{Solo, Raft, BFT}

// ParseOrdererType returns the canonical spelling of s.
func ParseOrdererType(s string) (OrdererType, bool) {
	for _, t := range supportedOrdererTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Placement tells where the orderer group lives.
type Placement string

const (
	// Dedicated places the orderer group in its own organization, listed first.
	Dedicated Placement = "dedicated"
	// FirstOrg attaches the orderer group to the first member organization.
	FirstOrg Placement = "first-org"
)

const (
	DefaultOrdererOrgName   = "Orderer-group-owner"
	DefaultOrdererOrgDomain = "root.com"
	DefaultChannel          = "mychannel"
)

// Params enumerates the recognized generator options. The mapstructure keys
// double as CLI flag names and, upper-cased, as environment variable suffixes.
type Params struct {
	Orgs     int `mapstructure:"num-orgs"`
	Auditors int `mapstructure:"num-auditors"`
	Peers    int `mapstructure:"num-peers"`
	Orderers int `mapstructure:"num-orderers"`

	OrdererType      string    `mapstructure:"orderer-type"`
	OrdererPlacement Placement `mapstructure:"orderer-placement"`
	OrdererOrgName   string    `mapstructure:"orderer-org-name"`
	OrdererOrgDomain string    `mapstructure:"orderer-org-domain"`

	Channel          string   `mapstructure:"channel"`
	ChaincodeName    string   `mapstructure:"chaincode-name"`
	ChaincodeDir     string   `mapstructure:"chaincode-dir"`
	ChaincodeVersion string   `mapstructure:"chaincode-version"`
	ChaincodeLang    string   `mapstructure:"chaincode-lang"`
	ChaincodeCount   int      `mapstructure:"chaincode-count"`
	InitArgs         []string `mapstructure:"init-args"`

	FabricVersion        string `mapstructure:"fabric-version"`
	DesiredFabricVersion string `mapstructure:"desired-fabric-version"`
	CAVersion            string `mapstructure:"ca-version"`
	DesiredCAVersion     string `mapstructure:"desired-ca-version"`
	EnvFile              string `mapstructure:"env-file"`

	TLS    bool   `mapstructure:"tls"`
	Schema string `mapstructure:"schema"`
}

// DefaultParams returns the documented defaults: one organization with one
// peer, no auditors, three raft orderers in a dedicated organization.
func DefaultParams() Params {
	return Params{
		Orgs:                 1,
		Auditors:             0,
		Peers:                1,
		Orderers:             3,
		OrdererType:          string(Raft),
		OrdererPlacement:     Dedicated,
		OrdererOrgName:       DefaultOrdererOrgName,
		OrdererOrgDomain:     DefaultOrdererOrgDomain,
		Channel:              DefaultChannel,
		ChaincodeName:        "chaincode",
		ChaincodeDir:         "chaincode",
		ChaincodeVersion:     "0.1.0",
		ChaincodeLang:        "golang",
		ChaincodeCount:       1,
		FabricVersion:        "2.4.3",
		DesiredFabricVersion: "2.5.3",
		CAVersion:            "1.5.0",
		DesiredCAVersion:     "1.5.6",
		EnvFile:              hooks.DefaultEnvFile,
		TLS:                  true,
		Schema:               DefaultSchema,
	}
}

// Validate checks p before anything is built. The returned error is either
// an *errors.ArgumentError or an *errors.ValidationError naming the field.
func (p Params) Validate() error {
	if p.Orgs < 1 {
		return errors.NewValidationError("num-orgs", p.Orgs, "at least one organization is required")
	}
	if p.Auditors < 0 {
		return errors.NewValidationError("num-auditors", p.Auditors, "must not be negative")
	}
	if p.Peers < 0 {
		return errors.NewValidationError("num-peers", p.Peers, "must not be negative")
	}
	if p.Orderers < 1 {
		return errors.NewValidationError("num-orderers", p.Orderers, "at least one orderer is required")
	}
	typ, ok := ParseOrdererType(p.OrdererType)
	if !ok {
		return errors.NewValidationError("orderer-type", p.OrdererType, "supported types are %s", supportedTypesString())
	}
	if typ == Solo && p.Orderers != 1 {
		return errors.NewValidationError("num-orderers", p.Orderers, "solo consensus runs exactly one orderer")
	}
	switch p.OrdererPlacement {
	case Dedicated:
		if len(p.OrdererOrgName) == 0 {
			return errors.NewArgumentError("orderer-org-name", p.OrdererOrgName, "must not be empty")
		}
		if len(p.OrdererOrgDomain) == 0 {
			return errors.NewArgumentError("orderer-org-domain", p.OrdererOrgDomain, "must not be empty")
		}
		if clash := p.orgClash(func(n string) bool { return n == p.OrdererOrgName }); len(clash) != 0 {
			return errors.NewValidationError("orderer-org-name", p.OrdererOrgName, "collides with organization [%s]", clash)
		}
		if clash := p.orgClash(func(n string) bool { return strings.EqualFold(OrgDomain(n), p.OrdererOrgDomain) }); len(clash) != 0 {
			return errors.NewValidationError("orderer-org-domain", p.OrdererOrgDomain, "already used by organization [%s]", clash)
		}
	case FirstOrg:
	default:
		return errors.NewValidationError("orderer-placement", p.OrdererPlacement, "supported placements are [%s, %s]", Dedicated, FirstOrg)
	}
	if p.ChaincodeCount < 1 {
		return errors.NewValidationError("chaincode-count", p.ChaincodeCount, "at least one chaincode is required")
	}
	for _, v := range []field{
		{"channel", p.Channel},
		{"chaincode-name", p.ChaincodeName},
		{"chaincode-dir", p.ChaincodeDir},
		{"chaincode-version", p.ChaincodeVersion},
		{"chaincode-lang", p.ChaincodeLang},
		{"fabric-version", p.FabricVersion},
	} {
		if len(strings.TrimSpace(v.value)) == 0 {
			return errors.NewArgumentError(v.name, v.value, "must not be empty")
		}
	}
	for _, v := range []field{
		{"fabric-version", p.FabricVersion},
		{"desired-fabric-version", p.DesiredFabricVersion},
		{"ca-version", p.CAVersion},
		{"desired-ca-version", p.DesiredCAVersion},
	} {
		if len(v.value) == 0 {
			continue
		}
		if _, err := version.NewVersion(v.value); err != nil {
			return errors.NewArgumentError(v.name, v.value, "not a version: %s", err)
		}
	}
	if len(p.DesiredCAVersion) != 0 && len(p.CAVersion) == 0 {
		return errors.NewArgumentError("ca-version", p.CAVersion, "required when desired-ca-version is set")
	}
	return nil
}

// Downgrades describes every requested migration to an older version.
// Params must be valid.
func (p Params) Downgrades() []string {
	var res []string
	for _, m := range []struct {
		component, current, desired string
	}{
		{"fabric", p.FabricVersion, p.DesiredFabricVersion},
		{"fabric-ca", p.CAVersion, p.DesiredCAVersion},
	} {
		if len(m.current) == 0 || len(m.desired) == 0 {
			continue
		}
		current, err := version.NewVersion(m.current)
		if err != nil {
			continue
		}
		desired, err := version.NewVersion(m.desired)
		if err != nil {
			continue
		}
		if desired.LessThan(current) {
			res = append(res, fmt.Sprintf("%s %s -> %s", m.component, current, desired))
		}
	}
	return res
}

type field struct {
	name, value string
}

// orgClash returns the first synthesized organization name accepted by
// match, if any.
func (p Params) orgClash(match func(name string) bool) string {
	for i := 1; i <= p.Orgs; i++ {
		if n := MemberOrgName(i); match(n) {
			return n
		}
	}
	for j := 1; j <= p.Auditors; j++ {
		if n := AuditorOrgName(j); match(n) {
			return n
		}
	}
	return ""
}

func supportedTypesString() string {
	names := make([]string, len(supportedOrdererTypes))
	for i, t := range supportedOrdererTypes {
		names[i] = string(t)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
