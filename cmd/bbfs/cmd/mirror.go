package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/spf13/cobra"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror DIGITS...",
	Short: "Print the mirror of each digit (0↔5, 1↔6, 2↔7, 3↔8, 4↔9)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(bbfs.MirrorString(strings.Join(args, " ")))
		return nil
	},
}
