/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package hooks renders the post-generate hook that Fablo runs after it has
// expanded a network configuration into docker artifacts. The hook is an
// opaque shell string: it rewrites image versions in the generated .env file.
package hooks

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/clolc/fablogen/pkg/utils/errors"
)

const (
	// DefaultEnvFile is where Fablo writes the docker image versions.
	DefaultEnvFile = "./fablo-target/fabric-docker/.env"

	fabricVersionKey = "_VERSION"
	caVersionKey     = "FABRIC_CA_VERSION"
)

var substitutionTemplate = template.Must(template.New("postGenerate").Parse(
	`perl -i -pe 's/{{.Key}}={{.From}}/{{.Key}}={{.To}}/g' {{.EnvFile}}`,
))

// Params describes the version migrations requested for the generated network.
// An empty desired version means no migration for that component.
type Params struct {
	EnvFile              string
	FabricVersion        string
	DesiredFabricVersion string
	CAVersion            string
	DesiredCAVersion     string
}

type substitution struct {
	Key     string
	From    string
	To      string
	EnvFile string
}

// Render returns the postGenerate command, or the empty string when no
// migration is requested.
func Render(p Params) (string, error) {
	envFile := p.EnvFile
	if len(envFile) == 0 {
		envFile = DefaultEnvFile
	}

	var subs []substitution
	if len(p.DesiredFabricVersion) != 0 {
		if len(p.FabricVersion) == 0 {
			return "", errors.Errorf("desired fabric version [%s] requires the current fabric version", p.DesiredFabricVersion)
		}
		subs = append(subs, substitution{Key: fabricVersionKey, From: p.FabricVersion, To: p.DesiredFabricVersion, EnvFile: envFile})
	}
	if len(p.DesiredCAVersion) != 0 {
		if len(p.CAVersion) == 0 {
			return "", errors.Errorf("desired fabric-ca version [%s] requires the current fabric-ca version", p.DesiredCAVersion)
		}
		subs = append(subs, substitution{Key: caVersionKey, From: p.CAVersion, To: p.DesiredCAVersion, EnvFile: envFile})
	}

	commands := make([]string, 0, len(subs))
	for _, s := range subs {
		buf := &bytes.Buffer{}
		if err := substitutionTemplate.Execute(buf, s); err != nil {
			return "", errors.Wrapf(err, "failed rendering substitution for [%s]", s.Key)
		}
		commands = append(commands, buf.String())
	}
	return strings.Join(commands, "; "), nil
}
