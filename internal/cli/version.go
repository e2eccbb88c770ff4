package cli

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the finlex version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("finlex %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
