/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gen

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/clolc/fablogen/pkg/config"
	"github.com/clolc/fablogen/pkg/logging"
	"github.com/clolc/fablogen/pkg/output"
	"github.com/clolc/fablogen/pkg/topology"
	"github.com/clolc/fablogen/pkg/utils/errors"
)

var logger = logging.MustGetLogger("fablogen.gen")

const DefaultOutput = "fablo-config.yaml"

type options struct {
	output string
	params string
	stdout bool
}

// NewCmd returns the Cobra Command generating a Fablo configuration
func NewCmd() *cobra.Command {
	o := &options{}
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a Fablo network configuration.",
		Long: `Generate a Fablo network configuration with one channel shared by every
member and auditor organization, and chaincodes endorsed by all of them.
Parameters can also be set in a parameters file (--params) or through
FABLOGEN_* environment variables; flags take precedence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("trailing args detected")
			}
			// Parsing of the command line is done so silence cmd usage
			cmd.SilenceUsage = true

			v, err := config.New()
			if err != nil {
				return err
			}
			for _, name := range paramFlags {
				if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
					return errors.Wrapf(err, "failed binding flag [%s]", name)
				}
			}
			p, err := config.Load(v, o.params)
			if err != nil {
				return err
			}
			var printTo io.Writer
			if o.stdout {
				printTo = cmd.OutOrStdout()
			}
			return Generate(p, o.output, printTo)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.output, "output", "o", DefaultOutput, "where to write the generated configuration")
	flags.StringVar(&o.params, "params", "", "yaml, json or toml file holding generator parameters")
	flags.BoolVar(&o.stdout, "stdout", false, "print the configuration instead of writing it")
	paramFlags = addParamFlags(flags, topology.DefaultParams())

	return cmd
}

// addParamFlags registers one flag per generator parameter and returns their names.
func addParamFlags(flags *pflag.FlagSet, d topology.Params) []string {
	flags.Int("num-orgs", d.Orgs, "number of member organizations")
	flags.Int("num-auditors", d.Auditors, "number of auditor organizations")
	flags.Int("num-peers", d.Peers, "number of peers per organization")
	flags.Int("num-orderers", d.Orderers, "number of orderers")
	flags.String("orderer-type", d.OrdererType, "consensus type: solo, raft or BFT")
	flags.String("orderer-placement", string(d.OrdererPlacement), "dedicated (own organization) or first-org")
	flags.String("orderer-org-name", d.OrdererOrgName, "name of the dedicated orderer organization")
	flags.String("orderer-org-domain", d.OrdererOrgDomain, "domain of the dedicated orderer organization")
	flags.String("channel", d.Channel, "channel name")
	flags.String("chaincode-name", d.ChaincodeName, "chaincode name, suffixed with its index when chaincode-count > 1")
	flags.String("chaincode-dir", d.ChaincodeDir, "chaincode source directory")
	flags.String("chaincode-version", d.ChaincodeVersion, "chaincode version")
	flags.String("chaincode-lang", d.ChaincodeLang, "chaincode language")
	flags.Int("chaincode-count", d.ChaincodeCount, "number of chaincodes to deploy")
	flags.StringSlice("init-args", d.InitArgs, "chaincode init arguments")
	flags.String("fabric-version", d.FabricVersion, "fabric version of the generated network")
	flags.String("desired-fabric-version", d.DesiredFabricVersion, "fabric version to switch to after generation, empty to keep")
	flags.String("ca-version", d.CAVersion, "fabric-ca version written by Fablo")
	flags.String("desired-ca-version", d.DesiredCAVersion, "fabric-ca version to switch to after generation, empty to keep")
	flags.String("env-file", d.EnvFile, "env file patched by the post-generate hook")
	flags.Bool("tls", d.TLS, "enable TLS")
	flags.String("schema", d.Schema, "Fablo schema url, empty to omit")

	var names []string
	flags.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "output", "params", "stdout":
		default:
			names = append(names, f.Name)
		}
	})
	return names
}

// Generate builds the configuration described by p and writes it to path,
// or to printTo when it is not nil.
func Generate(p topology.Params, path string, printTo io.Writer) error {
	for _, d := range p.Downgrades() {
		logger.Warnf("post-generate hook downgrades %s", d)
	}

	c, err := topology.Build(p)
	if err != nil {
		return err
	}
	raw, err := topology.Marshal(c)
	if err != nil {
		return err
	}

	if printTo != nil {
		if _, err := printTo.Write(raw); err != nil {
			return errors.Wrapf(err, "failed printing configuration")
		}
		return nil
	}
	if err := output.WriteFile(path, raw); err != nil {
		return err
	}
	logger.Infof("wrote [%s]: [%d] organizations, [%d] chaincodes, endorsement [%s]", path, len(c.Orgs), len(c.Chaincodes), c.Chaincodes[0].Endorsement)
	return nil
}
