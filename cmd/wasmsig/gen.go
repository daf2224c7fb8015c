package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wasmsig/internal/emcc"
	"wasmsig/internal/observ"
	"wasmsig/internal/pipeline"
	"wasmsig/internal/preset"
	"wasmsig/internal/syncdecl"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags]",
	Short: "Generate signatures and write the consolidated declarations file",
	Long: `Run every configuration preset through the inference pipeline, write
the consolidated declarations file, and optionally update or strip
__sig annotations across the JS library tree.`,
	Args: cobra.NoArgs,
	RunE: genExecution,
}

func init() {
	genCmd.Flags().StringP("output", "o", syncdecl.DefaultOutputPath(), "consolidated declarations file")
	genCmd.Flags().BoolP("remove", "r", false, "remove __sig entries covered by the generated file from other library files")
	genCmd.Flags().BoolP("update", "u", false, "update existing __sig entries in library files in place")
	genCmd.Flags().String("src-root", "src", "library source tree to scan for annotations")
	genCmd.Flags().Bool("keep-tmp", false, "keep the compilation workspace")
	genCmd.Flags().Bool("print-commands", false, "echo external toolchain commands")
	genCmd.Flags().Bool("no-cache", false, "bypass the per-preset result cache")
	genCmd.Flags().Int("jobs", runtime.NumCPU(), "max concurrent source file rewrites")
	genCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func genExecution(cmd *cobra.Command, args []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	removeFlag, err := cmd.Flags().GetBool("remove")
	if err != nil {
		return err
	}
	updateFlag, err := cmd.Flags().GetBool("update")
	if err != nil {
		return err
	}
	srcRoot, err := cmd.Flags().GetString("src-root")
	if err != nil {
		return err
	}
	keepTmp, err := cmd.Flags().GetBool("keep-tmp")
	if err != nil {
		return err
	}
	printCommands, err := cmd.Flags().GetBool("print-commands")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	colorValue, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}

	if removeFlag && updateFlag {
		return fmt.Errorf("--remove and --update are mutually exclusive")
	}
	if err := applyColorMode(colorValue); err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	presets, err := preset.Load()
	if err != nil {
		return err
	}
	toolchain, err := emcc.NewToolchain(printCommands)
	if err != nil {
		return err
	}
	var cache *pipeline.DiskCache
	if !noCache {
		cache, err = pipeline.OpenDiskCache("wasmsig")
		if err != nil {
			return fmt.Errorf("failed to open cache (use --no-cache to skip): %w", err)
		}
	}

	req := &pipeline.Request{
		Presets: presets,
		Driver:  toolchain,
		KeepTmp: keepTmp,
		Cache:   cache,
	}
	presetNames := make([]string, 0, len(presets))
	for _, p := range presets {
		presetNames = append(presetNames, p.Name)
	}

	timer := observ.NewTimer()
	ctx := cmd.Context()

	phase := timer.Begin("infer")
	var res pipeline.Result
	if shouldUseTUI(uiModeValue) && !quiet {
		res, err = runPipelineWithUI(ctx, "inferring signatures", presetNames, req)
	} else {
		req.Progress = plainSink{out: cmd.OutOrStdout(), quiet: quiet}
		res, err = pipeline.Run(ctx, req)
	}
	timer.End(phase, fmt.Sprintf("%d symbols", len(res.Sigs)))
	if err != nil {
		return err
	}

	phase = timer.Begin("write")
	if err := syncdecl.WriteLibrary(outputPath, res.Sigs); err != nil {
		return err
	}
	timer.End(phase, outputPath)
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d signatures to %s\n", len(res.Sigs), outputPath)
	}

	if updateFlag {
		phase = timer.Begin("update")
		if err := syncdecl.Update(ctx, srcRoot, res.Sigs, jobs); err != nil {
			return err
		}
		timer.End(phase, srcRoot)
	}
	if removeFlag {
		phase = timer.Begin("remove")
		if err := syncdecl.Remove(ctx, srcRoot, res.Sigs, jobs); err != nil {
			return err
		}
		timer.End(phase, srcRoot)
	}

	if res.TmpDir != "" && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "workspace kept at %s\n", res.TmpDir)
	}
	if timings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	return nil
}

func applyColorMode(value string) error {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		// fatih/color already auto-detects the terminal.
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return nil
}

const timeRounding = 10 * time.Millisecond

// plainSink prints one line per finished preset when the TUI is off.
type plainSink struct {
	out   io.Writer
	quiet bool
}

func (s plainSink) OnEvent(evt pipeline.Event) {
	if s.quiet || evt.Preset == "" {
		return
	}
	switch evt.Status {
	case pipeline.StatusDone:
		color.New(color.FgGreen).Fprintf(s.out, "  ok %-18s %s\n", evt.Preset, evt.Elapsed.Round(timeRounding))
	case pipeline.StatusError:
		color.New(color.FgRed).Fprintf(s.out, "fail %-18s %v\n", evt.Preset, evt.Err)
	}
}
