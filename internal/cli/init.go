package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guiyumin/narrify/internal/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create narrify config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := config.SaveFile(configFile, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", configFile)
			return nil
		}

		if err := config.Init(); err != nil {
			return err
		}

		fmt.Printf("Saved %s\n", config.SavePath())
		fmt.Println("Next: narrify config set-key transcription && narrify config set-key summarization")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
