// Package main is the entry point for the dust CLI
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frnsys/dust/pkg/api"
	"github.com/frnsys/dust/pkg/export"
	"github.com/frnsys/dust/pkg/progression"
	"github.com/frnsys/dust/pkg/theory"
	"github.com/frnsys/dust/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	patternsFile string
	keyName      string
	modeName     string
	bars         int
	seedChord    string
	rngSeed      int64
	outputFile   string
	tempo        float64
	serverPort   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dust",
	Short: "A chord progression sequencer",
	Long: `dust generates, edits and exports chord progressions built from
roman-numeral chord notation.

Examples:
  dust tui
  dust gen --bars 4 --mode minor
  dust resolve "V:b7/3" --key C4 --mode major
  dust export --bars 4 --key A3 --mode minor -o progression.mid
  dust serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	// Running dust with no subcommand opens the sequencer.
	RunE: runTUI,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive sequencer",
	RunE:  runTUI,
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a chord progression",
	RunE:  runGen,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <chord>",
	Short: "Resolve a chord to concrete notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate a progression and write it as a MIDI file",
	RunE:  runExport,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&patternsFile, "patterns", "", "Pattern template YAML (default ~/.config/dust/patterns.yaml)")

	genCmd.Flags().IntVarP(&bars, "bars", "b", 2, "Number of bars")
	genCmd.Flags().StringVarP(&modeName, "mode", "m", "major", "Mode (major or minor)")
	genCmd.Flags().StringVar(&seedChord, "seed", "", "Starting chord")
	genCmd.Flags().Int64Var(&rngSeed, "rng-seed", 0, "Random seed (0 = time-based)")

	resolveCmd.Flags().StringVarP(&keyName, "key", "k", "C4", "Key root note")
	resolveCmd.Flags().StringVarP(&modeName, "mode", "m", "major", "Mode (major or minor)")

	exportCmd.Flags().IntVarP(&bars, "bars", "b", 2, "Number of bars")
	exportCmd.Flags().StringVarP(&keyName, "key", "k", "C4", "Key root note")
	exportCmd.Flags().StringVarP(&modeName, "mode", "m", "major", "Mode (major or minor)")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "progression.mid", "Output .mid file path")
	exportCmd.Flags().Float64VarP(&tempo, "tempo", "t", 120, "Tempo in BPM")
	exportCmd.Flags().Int64Var(&rngSeed, "rng-seed", 0, "Random seed (0 = time-based)")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadTemplate loads the pattern template from the --patterns flag, or
// from the default config path, falling back to the built-in patterns.
func loadTemplate() (*progression.ProgressionTemplate, error) {
	if patternsFile != "" {
		return progression.LoadTemplate(patternsFile)
	}
	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".config", "dust", "patterns.yaml")
		if _, err := os.Stat(path); err == nil {
			return progression.LoadTemplate(path)
		}
	}
	return progression.DefaultTemplate(), nil
}

func getMode() (theory.Mode, error) {
	switch strings.ToLower(modeName) {
	case "major":
		return theory.Major, nil
	case "minor":
		return theory.Minor, nil
	default:
		return theory.Major, fmt.Errorf("unknown mode %q", modeName)
	}
}

func getKey() (theory.Key, error) {
	root, err := theory.ParseNote(keyName)
	if err != nil {
		return theory.Key{}, err
	}
	mode, err := getMode()
	if err != nil {
		return theory.Key{}, err
	}
	return theory.Key{Root: root, Mode: mode}, nil
}

func newRNG() *rand.Rand {
	seed := rngSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func generate(template *progression.ProgressionTemplate, mode theory.Mode) (*progression.Progression, error) {
	rng := newRNG()
	if seedChord != "" {
		seed, err := theory.ParseChord(seedChord)
		if err != nil {
			return nil, err
		}
		return template.GenProgressionFromSeed(rng, seed, bars, mode), nil
	}
	return template.GenProgression(rng, bars, mode), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	template, err := loadTemplate()
	if err != nil {
		return err
	}
	return tui.Run(template)
}

func runGen(cmd *cobra.Command, args []string) error {
	template, err := loadTemplate()
	if err != nil {
		return err
	}
	mode, err := getMode()
	if err != nil {
		return err
	}

	p, err := generate(template, mode)
	if err != nil {
		return err
	}

	ticksPerBar := p.Resolution.TicksPerBar()
	for i, cs := range p.Sequence {
		if cs != nil {
			fmt.Printf("%-6s", cs.String())
		} else {
			fmt.Printf("%-6s", ".")
		}
		if (i+1)%ticksPerBar == 0 {
			fmt.Println()
		}
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cs, err := theory.ParseChord(args[0])
	if err != nil {
		return err
	}
	key, err := getKey()
	if err != nil {
		return err
	}

	chord := cs.ChordForKey(key)
	fmt.Printf("%s in %s %s: %s\n", cs.String(), key.Root.String(), strings.ToLower(modeName), chord.String())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	template, err := loadTemplate()
	if err != nil {
		return err
	}
	key, err := getKey()
	if err != nil {
		return err
	}

	p, err := generate(template, key.Mode)
	if err != nil {
		return err
	}

	exporter := export.NewMIDIExporter()
	exporter.SetTempo(tempo)
	if err := exporter.WriteFile(p, key, outputFile); err != nil {
		return err
	}

	fmt.Printf("Wrote %d bars to %s\n", p.Bars(), outputFile)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	template, err := loadTemplate()
	if err != nil {
		return err
	}
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, template)
}
