// Command questtool is the CLI driver for the quest-script toolchain
// core. It is a thin wrapper: every real decision (build gating,
// opcode dispatch, register allocation) lives in the quest package.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/questscript/questasm"
)

var (
	buildName     string
	langOverride  int
	mode          string
	mnemonicStyle string
	includeDir    string
)

func resolveBuild() (quest.Build, error) {
	b, ok := quest.ParseBuild(buildName)
	if !ok {
		return 0, fmt.Errorf("unknown build %q", buildName)
	}
	return b, nil
}

func readInput(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return m, func() error { defer f.Close(); return m.Unmap() }, nil
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	b, err := resolveBuild()
	if err != nil {
		return err
	}
	data, closeFn, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	defer closeFn()

	opts := quest.DisassembleOptions{LanguageOverride: uint8(langOverride)}
	if mode == "annotated" {
		opts.Mode = quest.Annotated
	}
	if mnemonicStyle == "qedit" {
		opts.MnemonicStyle = quest.MnemonicQedit
	}

	text, err := quest.Disassemble(data, b, opts)
	if err != nil {
		return fmt.Errorf("disassembling %s: %w", args[0], err)
	}
	return os.WriteFile(args[1], []byte(text), 0644)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	dir := includeDir
	if dir == "" {
		dir = env.Str("QUESTASM_INCLUDE_DIR", "")
	}

	opts := quest.AssembleOptions{
		IncludeBin: func(name string) ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, name))
		},
	}

	out, err := quest.Assemble(string(src), opts)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", args[0], err)
	}
	return os.WriteFile(args[1], out, 0644)
}

func runEpisode(cmd *cobra.Command, args []string) error {
	b, err := resolveBuild()
	if err != nil {
		return err
	}
	data, closeFn, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	defer closeFn()

	ep, warning, err := quest.FindEpisode(data, b, uint8(langOverride))
	if err != nil {
		return fmt.Errorf("detecting episode in %s: %w", args[0], err)
	}
	if warning != "" {
		log.Printf("warning: %s", warning)
	}
	fmt.Println(ep)
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "questtool",
		Short: "Disassemble, assemble, and inspect quest-script binaries",
	}

	disasmCmd := &cobra.Command{
		Use:   "disassemble <in.bin> <out.txt>",
		Short: "Decode a compiled quest binary into textual source",
		Args:  cobra.ExactArgs(2),
		RunE:  runDisassemble,
	}
	disasmCmd.Flags().StringVar(&buildName, "build", "", "target build (required)")
	disasmCmd.Flags().IntVar(&langOverride, "lang", 0xFF, "language override (0xFF = use header)")
	disasmCmd.Flags().StringVar(&mode, "mode", "round_trippable", "round_trippable | annotated")
	disasmCmd.Flags().StringVar(&mnemonicStyle, "mnemonics", "primary", "primary | qedit")
	disasmCmd.MarkFlagRequired("build")

	asmCmd := &cobra.Command{
		Use:   "assemble <in.txt> <out.bin>",
		Short: "Compile textual quest source into a binary for its .version build",
		Args:  cobra.ExactArgs(2),
		RunE:  runAssemble,
	}
	asmCmd.Flags().StringVar(&includeDir, "include-dir", "", "directory for .include_bin (default $QUESTASM_INCLUDE_DIR)")

	episodeCmd := &cobra.Command{
		Use:   "episode <in.bin>",
		Short: "Statically determine the episode a quest targets",
		Args:  cobra.ExactArgs(1),
		RunE:  runEpisode,
	}
	episodeCmd.Flags().StringVar(&buildName, "build", "", "target build (required)")
	episodeCmd.Flags().IntVar(&langOverride, "lang", 0xFF, "language override (0xFF = use header)")
	episodeCmd.MarkFlagRequired("build")

	root.AddCommand(disasmCmd, asmCmd, episodeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
