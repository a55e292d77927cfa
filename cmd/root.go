// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/stratastor/strata-csi/cmd/config"
	"github.com/stratastor/strata-csi/cmd/health"
	"github.com/stratastor/strata-csi/cmd/serve"
	"github.com/stratastor/strata-csi/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strata-csi",
		Short: "strata-csi: StrataSTOR block storage CSI controller",
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(config.NewConfigCmd())

	return rootCmd
}
