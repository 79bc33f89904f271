package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"podcast-orchestrator/internal/domain"
)

func main() {
	root := &cobra.Command{
		Use:   "audioctl",
		Short: "Inspect and combine podcast WAV segments",
	}
	root.AddCommand(newCombineCmd(), newSilenceCmd(), newInfoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCombineCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "combine [flags] <segment.wav> [more.wav...]",
		Short: "Concatenate WAV segments into one file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buffers := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				buffers = append(buffers, data)
			}

			combined, err := domain.CombineWav(buffers)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, combined.Bytes, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Printf("wrote %s: %d segments, ~%ds, %d bytes\n",
				output, combined.SegmentCount, combined.DurationSeconds, len(combined.Bytes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "combined.wav", "output file")
	return cmd
}

func newSilenceCmd() *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "silence <output.wav>",
		Short: "Generate a silent test segment (44.1kHz mono 16-bit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := domain.SilenceWav(domain.DefaultSynthesisFormat, seconds)
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			fmt.Printf("wrote %s: %ds of silence, %d bytes\n", args[0], seconds, len(data))
			return nil
		},
	}
	cmd.Flags().IntVarP(&seconds, "seconds", "s", 3, "duration in seconds")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.wav>",
		Short: "Print the PCM format and payload size of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			format, payload, err := domain.ParseWav(data)
			if err != nil {
				return err
			}
			seconds := 0
			if rate := format.ByteRate(); rate > 0 {
				seconds = len(payload) / int(rate)
			}
			fmt.Printf("%s: %dHz, %d channel(s), %d-bit, %d payload bytes, ~%ds\n",
				args[0], format.SampleRate, format.Channels, format.BitsPerSample, len(payload), seconds)
			return nil
		},
	}
}
