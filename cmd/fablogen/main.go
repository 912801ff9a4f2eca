/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clolc/fablogen/pkg/cmd/gen"
	"github.com/clolc/fablogen/pkg/cmd/version"
	"github.com/clolc/fablogen/pkg/logging"
)

const CmdRoot = "fablogen"

// The main command describes the service and
// defaults to printing the help message.
var mainCmd = &cobra.Command{
	Use: CmdRoot,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			LogSpec: viper.GetString("logging_spec"),
			Format:  viper.GetString("logging_format"),
		})
	},
}

func main() {
	// For environment variables.
	viper.SetEnvPrefix(CmdRoot)
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	mainFlags := mainCmd.PersistentFlags()
	mainFlags.String("logging-spec", "info", "log level spec, e.g. info or fablogen.topology=debug:warn")
	viper.BindPFlag("logging_spec", mainFlags.Lookup("logging-spec"))
	mainFlags.String("logging-format", "", "log record format, json or a flogging format string")
	viper.BindPFlag("logging_format", mainFlags.Lookup("logging-format"))

	mainCmd.AddCommand(gen.NewCmd())
	mainCmd.AddCommand(version.Cmd())

	// On failure Cobra prints the usage message and error string, so we only
	// need to exit with a non-0 status
	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
