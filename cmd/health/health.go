// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stratastor/strata-csi/config"
	"github.com/stratastor/strata-csi/pkg/health"
)

func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the health of a running driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := health.NewHealthChecker(config.GetConfig())
			if err != nil {
				return err
			}
			st, err := checker.CheckHealth(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s (arrays: %s)\n",
				st.Driver, st.Status, st.Version, strings.Join(st.ArrayTypes, ","))
			return nil
		},
	}
}
