// Command cli is the VocalID speaker-fingerprinting tool: enroll speakers
// from WAV recordings plus a neural embedding, identify the speakers in a
// diarized recording, and attach transcript timestamps to speaker tags.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vocalid/vocalid/pkg/logger"
	"github.com/vocalid/vocalid/pkg/vocalid"
	"github.com/vocalid/vocalid/pkg/vocalid/audio"
	"github.com/vocalid/vocalid/pkg/vocalid/diarize"
	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
	"github.com/vocalid/vocalid/pkg/vocalid/vad"
)

// Global flags, shared by every subcommand.
var (
	configPath string
	dbPath     string
	sampleRate int
	threshold  float64
)

func registerGlobalFlags(fs *flag.FlagSet, cfg fileConfig) {
	fs.StringVar(&dbPath, "db", getEnvOrDefault("VOCALID_DB_PATH", cfg.DBPath), "Path to the speaker library database")
	fs.IntVar(&sampleRate, "rate", cfg.SampleRate, "Pipeline sample rate in Hz")
	fs.Float64Var(&threshold, "threshold", cfg.MatchThreshold, "Cosine distance threshold for speaker matching")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService(cfg fileConfig) (vocalid.Service, error) {
	return vocalid.NewService(
		vocalid.WithDBPath(dbPath),
		vocalid.WithSampleRate(sampleRate),
		vocalid.WithMatchThreshold(threshold),
		vocalid.WithVAD(vad.Config{
			EnergyThreshold:  cfg.VAD.EnergyThreshold,
			MinSpeechFrames:  cfg.VAD.MinSpeechFrames,
			MinSilenceFrames: cfg.VAD.MinSilenceFrames,
			HangoverSeconds:  cfg.VAD.HangoverSeconds,
		}),
	)
}

func main() {
	log := logger.GetLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]

	// -config must be parsed before the rest so file values become flag
	// defaults.
	for i, a := range args {
		if a == "-config" && i+1 < len(args) {
			configPath = args[i+1]
		}
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var cmdErr error
	switch command {
	case "enroll":
		cmdErr = handleEnroll(cfg, args)
	case "identify":
		cmdErr = handleIdentify(cfg, args)
	case "assign":
		cmdErr = handleAssign(cfg, args)
	case "compare":
		cmdErr = handleCompare(cfg, args)
	case "list":
		cmdErr = handleList(cfg, args)
	case "delete":
		cmdErr = handleDelete(cfg, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if cmdErr != nil {
		log.Fatalf("%s: %v", command, cmdErr)
	}
}

func printUsage() {
	fmt.Print(`VocalID - speaker fingerprinting and diarization matching

Usage:
  vocalid enroll   -name NAME -embedding FILE [flags] AUDIO.wav [AUDIO.wav ...]
  vocalid identify -segments FILE [flags]
  vocalid assign   -segments FILE -points FILE [flags]
  vocalid compare  [flags] A.wav B.wav
  vocalid list     [flags]
  vocalid delete   [flags] SPEAKER_ID

Common flags:
  -config FILE      YAML pipeline configuration
  -db PATH          speaker library database (env: VOCALID_DB_PATH)
  -rate HZ          pipeline sample rate (default 16000)
  -threshold DIST   match threshold on cosine distance (default 0.4)
`)
}

// extractFromWAV decodes a WAV file and runs the spectral frontend over it,
// warning when the recording is mostly silence.
func extractFromWAV(svc vocalid.Service, path string) (*spectral.VoiceProfile, error) {
	log := logger.GetLogger()

	samples, rate, err := audio.ReadMonoWAV(path)
	if err != nil {
		return nil, err
	}

	ratio, err := svc.SpeechRatio(samples, rate)
	if err != nil {
		return nil, err
	}
	if ratio < 0.3 {
		log.Warnf("%s: only %.0f%% of frames contain speech; profile quality may suffer", path, ratio*100)
	}

	profile, err := svc.ExtractProfile(context.Background(), samples, rate)
	if err != nil {
		return nil, err
	}
	if profile.IsEmpty() {
		log.Warnf("%s: too short to analyze", path)
	}
	return profile, nil
}

func handleEnroll(cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	registerGlobalFlags(fs, cfg)
	fs.StringVar(&configPath, "config", configPath, "YAML pipeline configuration")
	name := fs.String("name", "", "Speaker name (required)")
	embeddingPath := fs.String("embedding", "", "JSON file with the speaker's 256-dim embedding (required)")
	fs.Parse(args)

	if *name == "" || *embeddingPath == "" {
		return fmt.Errorf("-name and -embedding are required")
	}
	wavPaths := fs.Args()
	if len(wavPaths) == 0 {
		return fmt.Errorf("at least one WAV file is required")
	}

	embedding, err := readEmbedding(*embeddingPath)
	if err != nil {
		return err
	}

	svc, err := createService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	profiles := make([]*spectral.VoiceProfile, 0, len(wavPaths))
	for _, path := range wavPaths {
		p, err := extractFromWAV(svc, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		profiles = append(profiles, p)
	}

	id, err := svc.EnrollSpeaker(context.Background(), *name, profiles, embedding)
	if err != nil {
		return err
	}
	fmt.Printf("Enrolled %q (id %s) from %d recording(s)\n", *name, id, len(wavPaths))
	return nil
}

func handleIdentify(cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("identify", flag.ExitOnError)
	registerGlobalFlags(fs, cfg)
	fs.StringVar(&configPath, "config", configPath, "YAML pipeline configuration")
	segmentsPath := fs.String("segments", "", "JSON diarization output for one recording (required)")
	fs.Parse(args)

	if *segmentsPath == "" {
		return fmt.Errorf("-segments is required")
	}
	segFile, err := readSegments(*segmentsPath)
	if err != nil {
		return err
	}

	svc, err := createService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	identity, err := svc.IdentifyRecording(context.Background(), segFile.Segments, segFile.SpeakerDB)
	if err != nil {
		return err
	}

	speakers, err := svc.ListSpeakers()
	if err != nil {
		return err
	}
	names := make(map[string]string, len(speakers))
	for _, sp := range speakers {
		names[sp.ID] = sp.Name
	}

	for tag, profile := range identity.Profiles {
		if id, ok := identity.Matches[tag]; ok {
			fmt.Printf("%s  %6.1fs  ->  %s (%s)\n", tag, profile.TotalDuration, names[id], id)
		} else {
			fmt.Printf("%s  %6.1fs  ->  (unknown)\n", tag, profile.TotalDuration)
		}
	}
	return nil
}

func handleAssign(cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	registerGlobalFlags(fs, cfg)
	fs.StringVar(&configPath, "config", configPath, "YAML pipeline configuration")
	segmentsPath := fs.String("segments", "", "JSON diarization output (required)")
	pointsPath := fs.String("points", "", "JSON transcript points (required)")
	fs.Parse(args)

	if *segmentsPath == "" || *pointsPath == "" {
		return fmt.Errorf("-segments and -points are required")
	}
	segFile, err := readSegments(*segmentsPath)
	if err != nil {
		return err
	}
	points, err := readPoints(*pointsPath)
	if err != nil {
		return err
	}

	svc, err := createService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	assigned, err := svc.AssignSegments(context.Background(), segFile.Segments, points)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(assigned, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func handleCompare(cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	registerGlobalFlags(fs, cfg)
	fs.StringVar(&configPath, "config", configPath, "YAML pipeline configuration")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("compare takes exactly two WAV files")
	}

	svc, err := createService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	a, err := extractFromWAV(svc, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	b, err := extractFromWAV(svc, fs.Arg(1))
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(1), err)
	}

	fmt.Printf("similarity: %.4f\n", svc.CompareProfiles(a, b))
	return nil
}

func handleList(cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	registerGlobalFlags(fs, cfg)
	fs.StringVar(&configPath, "config", configPath, "YAML pipeline configuration")
	fs.Parse(args)

	svc, err := createService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	speakers, err := svc.ListSpeakers()
	if err != nil {
		return err
	}
	if len(speakers) == 0 {
		fmt.Println("No speakers enrolled.")
		return nil
	}
	for _, sp := range speakers {
		fmt.Printf("%s  %-20s  enrolled %s\n", sp.ID, sp.Name, sp.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func handleDelete(cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	registerGlobalFlags(fs, cfg)
	fs.StringVar(&configPath, "config", configPath, "YAML pipeline configuration")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("delete takes exactly one speaker ID")
	}

	svc, err := createService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.DeleteSpeaker(fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("Deleted speaker %s\n", fs.Arg(0))
	return nil
}

func readEmbedding(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var emb []float32
	if err := json.Unmarshal(data, &emb); err != nil {
		return nil, fmt.Errorf("parsing embedding: %w", err)
	}
	return emb, nil
}

func readSegments(path string) (*segmentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf segmentFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing segments: %w", err)
	}
	return &sf, nil
}

func readPoints(path string) ([]diarize.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var points []diarize.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("parsing points: %w", err)
	}
	return points, nil
}
