package cli

import (
	"fmt"
	"time"

	"github.com/Cloudinfo-Github/call-center-ai/internal/bench"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	defaults := bench.DefaultOptions()

	var (
		calls   int
		frames  int
		delayMs int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark session latency against a simulated service",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := bench.Run(cmd.Context(), bench.Options{
				Calls:         calls,
				FramesPerCall: frames,
				ServiceDelay:  time.Duration(delayMs) * time.Millisecond,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d calls, %d frames each\n", result.Calls, result.FramesPerCall)
			fmt.Fprintf(out, "first-audio latency: p50=%.2fms p95=%.2fms p99=%.2fms\n",
				result.LatencyP50, result.LatencyP95, result.LatencyP99)
			fmt.Fprintf(out, "min=%.2fms avg=%.2fms max=%.2fms total=%.2fms\n",
				result.MinLatency, result.AvgLatency, result.MaxLatency, result.TotalDuration)

			if output != "" {
				if err := bench.WriteReport(result, output); err != nil {
					return err
				}
				fmt.Fprintf(out, "report written to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&calls, "calls", defaults.Calls, "number of simulated calls")
	cmd.Flags().IntVar(&frames, "frames", defaults.FramesPerCall, "audio deltas per call")
	cmd.Flags().IntVar(&delayMs, "delay", int(defaults.ServiceDelay.Milliseconds()), "simulated service delay per event (ms)")
	cmd.Flags().StringVar(&output, "output", "", "write a JSON report to this path")

	return cmd
}
