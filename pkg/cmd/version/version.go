/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const ProgramName = "fablogen"

// Version is set at build time with -ldflags "-X .../version.Version=..."
var Version = "latest"

// Cmd returns the Cobra Command for Version
func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print fablogen version.",
		Long:  `Print current version of fablogen.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parsing of the command line is done so silence cmd usage
			cmd.SilenceUsage = true
			fmt.Fprint(cmd.OutOrStdout(), GetInfo())
			return nil
		},
	}
}

// GetInfo returns version information
func GetInfo() string {
	return fmt.Sprintf("%s:\n Version: %s\n Go version: %s\n OS/Arch: %s\n",
		ProgramName, Version, runtime.Version(),
		fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
}
