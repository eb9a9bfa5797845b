package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version and commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Info())
		},
	}
}
