package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	session "github.com/Cloudinfo-Github/call-center-ai/core"
	"github.com/Cloudinfo-Github/call-center-ai/core/audio/miniaudio"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools/insurance"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call",
		Short: "Run a live call using the microphone and speakers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			audioClient, err := miniaudio.NewClient()
			if err != nil {
				return fmt.Errorf("failed to open audio devices: %w", err)
			}
			defer audioClient.Close()

			registry := tools.NewRegistry()
			plugin := insurance.NewPlugin(insurance.NewMemoryClaimStore(),
				insurance.WithKnowledge(engine),
				insurance.WithEndHandler(func(summary string) {
					if summary != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "call summary: %s\n", summary)
					}
					cancel()
				}),
				insurance.WithTransferHandler(func(reason string) {
					fmt.Fprintf(cmd.OutOrStdout(), "transferring to a human agent: %s\n", reason)
					cancel()
				}),
			)
			plugin.Register(registry)

			handler := session.New(session.WithTransportDialer(realtimeDialer()))

			source, err := audioClient.Capture(ctx)
			if err != nil {
				return err
			}

			coordinator := session.NewCoordinator(uuid.NewString(), handler, audioClient.Play, registry,
				session.WithInterruptionHandler(audioClient.ClearPlayback),
			)

			fmt.Fprintln(cmd.OutOrStdout(), "call started, press ctrl-c to hang up")
			report, err := coordinator.HandleCall(ctx, source, sessionOverrides(registry.Declarations())...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "call %s ended: %d tool calls, %d interruptions\n",
				report.CallID, len(report.ToolCalls), report.Interruptions)
			if report.Transcript != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "transcript:\n%s\n", report.Transcript)
			}
			return nil
		},
	}
}
