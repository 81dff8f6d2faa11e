// Package main is the entry point for the notemaker CLI
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/james-see/notemaker/pkg/api"
	"github.com/james-see/notemaker/pkg/capture"
	"github.com/james-see/notemaker/pkg/chords"
	"github.com/james-see/notemaker/pkg/config"
	"github.com/james-see/notemaker/pkg/converter"
	"github.com/james-see/notemaker/pkg/engine"
	"github.com/james-see/notemaker/pkg/logging"
	"github.com/james-see/notemaker/pkg/melody"
	"github.com/james-see/notemaker/pkg/textnotes"
	"github.com/james-see/notemaker/pkg/theory"
	"github.com/james-see/notemaker/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	rootName   string
	scaleName  string
	seed       uint64
	tempo      float64
	genre      string
	outputFile string
	logLevel   string
	serverPort int
)

// chords flags
var (
	chordBars   int
	startDegree int
	baseOctave  int
	velocity    int
	voicing     chords.VoicingOptions
	pedalName   string
)

// melody flags
var (
	melodyCfg      = melody.DefaultConfig()
	alternatives   int
	altProbability float64
)

// text flags
var textOpts = textnotes.DefaultOptions("")

var keyFilter bool

func main() {
	_ = godotenv.Load()
	cfg = config.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notemaker",
	Short: "Generate chord progressions, melodies and text as MIDI",
	Long: `notemaker generates musical note data: Markov chord progressions with
voice leading, scale-aware melodies, scale quantization, text written into a
piano roll and retrospective capture of played notes.

Examples:
  notemaker chords --root D --scale dorian --bars 8 --revoice --seventh
  notemaker melody --bars 4 --motif 30 -o lead.mid
  notemaker quantize riff.mid --scale "minor pentatonic"
  notemaker text "hello" --italic
  notemaker tui
  notemaker serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var chordsCmd = &cobra.Command{
	Use:   "chords",
	Short: "Generate a chord progression",
	Args:  cobra.NoArgs,
	RunE:  runChords,
}

var melodyCmd = &cobra.Command{
	Use:   "melody",
	Short: "Generate a melody",
	Args:  cobra.NoArgs,
	RunE:  runMelody,
}

var quantizeCmd = &cobra.Command{
	Use:   "quantize <input>",
	Short: "Snap the notes of a MIDI or JSON clip onto a scale",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuantize,
}

var textCmd = &cobra.Command{
	Use:   "text <text>",
	Short: "Write text into a piano roll",
	Args:  cobra.ExactArgs(1),
	RunE:  runText,
}

var scalesCmd = &cobra.Command{
	Use:   "scales",
	Short: "List the built-in scales",
	Args:  cobra.NoArgs,
	RunE:  runScales,
}

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Write every pitch of a scale as muted notes",
	Args:  cobra.NoArgs,
	RunE:  runStack,
}

var captureCmd = &cobra.Command{
	Use:   "capture <input.mid>",
	Short: "Replay a performance through the capture buffer and keep the last 8 bars",
	Args:  cobra.ExactArgs(1),
	RunE:  runCapture,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a clip between MIDI and JSON",
	Long:  `Detects the input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootName, "root", "r", "", "Root note C..B (default from NOTEMAKER_ROOT)")
	pf.StringVarP(&scaleName, "scale", "s", "", "Scale name (default from NOTEMAKER_SCALE)")
	pf.Uint64Var(&seed, "seed", 0, "Random seed, 0 for a time based seed")
	pf.Float64Var(&tempo, "tempo", 0, "Tempo in BPM (default from NOTEMAKER_TEMPO)")
	pf.StringVar(&genre, "genre", "", "Genre tag for generated file names: "+strings.Join(converter.Genres, ", "))
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	// chords command
	cf := chordsCmd.Flags()
	cf.IntVarP(&chordBars, "bars", "b", chords.DefaultBars, "Number of chords")
	cf.IntVar(&startDegree, "start-degree", 0, "Degree of the first chord, 0-6")
	cf.IntVar(&baseOctave, "base-octave", chords.DefaultBaseOctave, "MIDI pitch of the root's octave")
	cf.IntVar(&velocity, "velocity", chords.DefaultVelocity, "Note velocity")
	cf.BoolVar(&voicing.Seventh, "seventh", false, "Add sevenths")
	cf.BoolVar(&voicing.Tenth, "tenth", false, "Add tenths")
	cf.BoolVar(&voicing.Bass, "bass", false, "Add a bass note two octaves under the root")
	cf.BoolVar(&voicing.Revoice, "revoice", false, "Revoice for smooth voice leading")
	cf.IntVar(&voicing.MinInterval, "min-interval", chords.DefaultMinInterval, "Smallest interval between voices when revoicing")
	cf.StringVar(&pedalName, "pedal", "", "Role held as a pedal when revoicing (root, third, fifth, seventh, tenth)")
	chordsCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid or .json path")

	// melody command
	mf := melodyCmd.Flags()
	mf.IntVarP(&melodyCfg.Bars, "bars", "b", 1, "Number of bars")
	mf.IntVar(&melodyCfg.OctaveStart, "octave", melodyCfg.OctaveStart, "Lowest octave, 0-8")
	mf.IntVar(&melodyCfg.OctaveRange, "range", melodyCfg.OctaveRange, "Octaves spanned, 1-4")
	mf.Float64SliceVar(&melodyCfg.DegreeWeights, "weights", append([]float64(nil), melody.DefaultDegreeWeights...), "Weight per scale degree")
	mf.Float64Var(&melodyCfg.RestProbability, "rest", 0, "Percent chance a slot stays silent")
	mf.Float64Var(&melodyCfg.RepetitionChance, "repetition", 0, "Percent chance to replay the recent phrase")
	mf.Float64Var(&melodyCfg.MotifChance, "motif", 0, "Percent chance to develop a motif")
	mf.Float64Var(&melodyCfg.LengthVariation, "variation", 0, "Note length variation, 0 for sixteenths only")
	mf.Float64Var(&melodyCfg.Emphasis, "emphasis", 0, "Boost of I, IV and V on strong steps")
	mf.Float64Var(&melodyCfg.Randomness, "randomness", melodyCfg.Randomness, "Blend of random expression over the baseline")
	mf.BoolVar(&melodyCfg.AllowRepeats, "allow-repeats", false, "Allow recently played pitches")
	mf.IntVar(&melodyCfg.Channel, "channel", 0, "MIDI channel")
	mf.IntVar(&alternatives, "alternatives", 0, "Also write this many alternative melodies")
	mf.Float64Var(&altProbability, "alt-probability", 30, "Percent of notes an alternative moves")
	mf.StringVarP(&outputFile, "output", "o", "", "Output .mid or .json path")

	// quantize command
	quantizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output path (default <input>_quantized.<ext>)")

	// text command
	tf := textCmd.Flags()
	tf.IntVar(&textOpts.OctaveStart, "octave", textOpts.OctaveStart, "Lowest octave, 0-5")
	tf.IntVar(&textOpts.Width, "width", textOpts.Width, "Steps per glyph column, 1-8")
	tf.IntVar(&textOpts.Height, "height", textOpts.Height, "Scale degrees per glyph row, 1-8")
	tf.IntVar(&textOpts.Gap, "gap", textOpts.Gap, "Steps between characters, 1-8")
	tf.BoolVar(&textOpts.Italic, "italic", false, "Slant the glyphs")
	tf.StringVarP(&outputFile, "output", "o", "", "Output .mid or .json path")

	stackCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid or .json path")

	// capture command
	captureCmd.Flags().BoolVar(&keyFilter, "key-filter", false, "Drop notes outside the key")
	captureCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid or .json path")

	// convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from PORT)")

	rootCmd.AddCommand(chordsCmd)
	rootCmd.AddCommand(melodyCmd)
	rootCmd.AddCommand(quantizeCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(scalesCmd)
	rootCmd.AddCommand(stackCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup fills unset flags from the environment and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		cfg = config.Load()
	}
	if rootName != "" {
		cfg.Root = rootName
	}
	if scaleName != "" {
		cfg.Scale = scaleName
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if tempo > 0 {
		cfg.Tempo = tempo
	}
	if genre != "" {
		cfg.Genre = genre
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger = logging.New(cfg.LogLevel, os.Stderr)
	return nil
}

func newSession() *engine.Session {
	return engine.NewSession("cli", theory.NewRand(cfg.Seed), cfg.Tempo, logger)
}

// outputPath returns the -o flag or a dated name for the part
func outputPath(part string) (string, error) {
	if outputFile != "" {
		return outputFile, nil
	}
	base, err := converter.SuggestFilename(cfg.Genre, time.Now())
	if err != nil {
		return "", err
	}
	return base + "_" + part + ".mid", nil
}

func writeClip(part string, notes []theory.Note) (string, error) {
	path, err := outputPath(part)
	if err != nil {
		return "", err
	}
	clip := &converter.Clip{Name: part, Tempo: cfg.Tempo, Notes: notes}
	if err := converter.New().WriteFile(clip, path); err != nil {
		return "", err
	}
	return path, nil
}

func runChords(cmd *cobra.Command, args []string) error {
	root, intervals, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	voicing.Pedal = theory.ParseRole(strings.ToLower(pedalName))

	p, err := newSession().GenerateChords(chords.Config{
		Root:        root,
		Intervals:   intervals,
		Bars:        chordBars,
		BaseOctave:  baseOctave,
		Velocity:    velocity,
		StartDegree: startDegree,
	}, voicing)
	if err != nil {
		return err
	}

	names := make([]string, len(p))
	for i, c := range p {
		names[i] = c.Name()
	}
	path, err := writeClip(string(engine.PartChords), p.Notes())
	if err != nil {
		return err
	}
	fmt.Printf("%s %s: %s\n", theory.RootNames[root], cfg.Scale, strings.Join(names, " - "))
	fmt.Printf("Wrote %d notes to %s\n", len(p.Notes()), path)
	return nil
}

func runMelody(cmd *cobra.Command, args []string) error {
	root, intervals, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	melodyCfg.Root, melodyCfg.Intervals = root, intervals

	sess := newSession()
	res, err := sess.GenerateMelody(melodyCfg)
	if err != nil {
		return err
	}
	path, err := writeClip(string(engine.PartMelody), res.Notes)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d notes over %.0f steps to %s\n", len(res.Notes), res.Steps, path)

	for i := 1; i <= alternatives; i++ {
		notes, err := sess.AlternativeMelody(altProbability)
		if err != nil {
			return err
		}
		altPath := strings.TrimSuffix(path, filepath.Ext(path)) + fmt.Sprintf("_alt%d", i) + filepath.Ext(path)
		clip := &converter.Clip{Name: fmt.Sprintf("melody alt %d", i), Tempo: cfg.Tempo, Notes: notes}
		if err := converter.New().WriteFile(clip, altPath); err != nil {
			return err
		}
		fmt.Printf("Wrote alternative to %s\n", altPath)
	}
	return nil
}

func runQuantize(cmd *cobra.Command, args []string) error {
	input := args[0]
	root, intervals, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	conv := converter.New()
	clip, err := conv.ReadFile(input)
	if err != nil {
		return err
	}

	notes, corrections, err := newSession().Quantize(root, intervals, clip.Notes)
	if err != nil {
		return err
	}
	clip.Notes = notes

	output := outputFile
	if output == "" {
		ext := filepath.Ext(input)
		if converter.DetectFormat(input) == converter.FormatUnknown {
			ext = converter.FormatMIDI.Extension()
		}
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "_quantized" + ext
	}
	if err := conv.WriteFile(clip, output); err != nil {
		return err
	}
	fmt.Printf("Moved %d of %d notes into %s %s -> %s\n", len(corrections), len(notes), theory.RootNames[root], cfg.Scale, output)
	return nil
}

func runText(cmd *cobra.Command, args []string) error {
	root, intervals, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	opts := textOpts
	opts.Root, opts.Intervals, opts.Text = root, intervals, args[0]

	for _, r := range opts.Text {
		if !textnotes.Supported(r) {
			logger.Warn("character has no glyph, skipped", "char", string(r))
		}
	}
	notes, err := newSession().RenderText(opts)
	if err != nil {
		return err
	}
	path, err := writeClip("text", notes)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d notes over %d steps to %s\n", len(notes), textnotes.Width(opts), path)
	return nil
}

func runScales(cmd *cobra.Command, args []string) error {
	for _, s := range theory.Scales() {
		steps := make([]string, len(s.Intervals))
		for i, v := range s.Intervals {
			steps[i] = fmt.Sprint(v)
		}
		fmt.Printf("%-22s %s\n", s.Name, strings.Join(steps, " "))
	}
	return nil
}

func runStack(cmd *cobra.Command, args []string) error {
	root, intervals, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	notes, err := newSession().ScaleStack(root, intervals)
	if err != nil {
		return err
	}
	path, err := writeClip("stack", notes)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d muted notes to %s\n", len(notes), path)
	return nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	clip, err := converter.New().ReadFile(args[0])
	if err != nil {
		return err
	}
	sess := newSession()
	if clip.Tempo > 0 && tempo == 0 {
		sess.SetTempo(clip.Tempo)
	}
	buf := sess.Capture()
	buf.Replay(clip.Notes, time.Unix(0, 0))

	root, intervals, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	notes, err := sess.CaptureNotes(keyFilter, root, intervals)
	if err != nil {
		return err
	}
	path, err := writeClip(string(engine.PartCapture), notes)
	if err != nil {
		return err
	}
	fmt.Printf("Captured %d notes (%d bars at %.2f BPM) to %s\n", len(notes), capture.WindowBars, buf.Tempo(), path)
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := converter.New()

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	root, _, err := cfg.DefaultKey()
	if err != nil {
		return err
	}
	// keep the terminal clean while the alt screen is up
	logger = logging.New("error", os.Stderr)
	return tui.Run(tui.Options{
		Session: engine.NewSession("tui", theory.NewRand(cfg.Seed), cfg.Tempo, logger),
		Root:    root,
		Scale:   cfg.Scale,
		Genre:   cfg.Genre,
		Tempo:   cfg.Tempo,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	port := serverPort
	if port == 0 {
		if _, err := fmt.Sscanf(cfg.Port, "%d", &port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
		}
	}
	if _, _, err := cfg.DefaultKey(); err != nil {
		return err
	}
	store := engine.NewStore(cfg.Seed, cfg.Tempo, logger)
	logger.Info("starting API server", "port", port, "swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", port))
	return api.StartServer(port, store, cfg, logger)
}
