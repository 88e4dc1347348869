package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "vclip <input>",
		Short:        "Turn a long MP4 into vertical shorts",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().Int("shorts", 5, "Number of shorts")
	root.Flags().String("strategy", "basic", "Effect strategy (basic, clean); defaults to the profile's")
	root.Flags().String("profile", "", "Render profile YAML (defaults when empty)")
	root.Flags().Float64("speed", 0, "Playback speed override (0 keeps the profile value)")
	root.Flags().Int("jobs", 1, "Shorts rendered in parallel")
	root.Flags().Bool("refresh", false, "Ignore cached transcript, selection and outputs")
	root.Flags().Bool("debug", false, "Keep intermediate renders")
	root.Flags().BoolP("verbose", "v", false, "Debug logging")
	root.Flags().Bool("upload", false, "Upload rendered shorts to YouTube")
	root.Flags().String("privacy", "private", "Upload privacy (private, unlisted, public)")

	// Hidden tuning flags (internal)
	root.Flags().Int("min", 15, "Min short duration seconds")
	root.Flags().Int("max", 60, "Max short duration seconds")
	_ = root.Flags().MarkHidden("min")
	_ = root.Flags().MarkHidden("max")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
