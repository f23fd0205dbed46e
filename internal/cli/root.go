// Package cli implements the callcenterai command tree.
package cli

import (
	"fmt"
	"strings"

	"github.com/Cloudinfo-Github/call-center-ai/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     config.Config
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callcenterai",
		Short: "Realtime AI voice agent for insurance calls",
		Long: "callcenterai runs realtime voice sessions against the OpenAI realtime API,\n" +
			"executing insurance claim tools and answering coverage questions from a\n" +
			"vector knowledge base.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				lines := make([]string, 0, len(issues))
				for _, issue := range issues {
					lines = append(lines, issue.String())
				}
				return fmt.Errorf("invalid configuration:\n  %s", strings.Join(lines, "\n  "))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newKBCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
