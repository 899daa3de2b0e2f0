package cleaner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/forvodl/internal"
)

// SoxConfig holds configuration for SoX based cleaning
type SoxConfig struct {
	ProfileDir    string  // Noise profiles and their index
	SampleSeconds float64 // Leading audio sampled for a new profile
	Amount        float64 // noisered sensitivity, 0 to 1
	NormalizeDB   float64 // Peak level after normalization
	Suffix        string  // Appended to the stem of the cleaned file
}

// DefaultSoxConfig returns the default cleaning configuration
func DefaultSoxConfig() *SoxConfig {
	return &SoxConfig{
		ProfileDir:    DefaultStateDir(),
		SampleSeconds: 0.3,
		Amount:        0.21,
		NormalizeDB:   -1,
		Suffix:        "_clean",
	}
}

// DefaultStateDir is where noise profiles are kept unless configured
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "forvodl")
	}
	return filepath.Join(home, ".local", "state", "forvodl")
}

// Runner executes an external command and returns its combined output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Sox implements Cleaner with the sox command line tool
type Sox struct {
	config *SoxConfig
	store  *ProfileStore
	run    Runner
	log    logrus.FieldLogger
}

// NewSox checks that sox is installed and opens the profile index
func NewSox(config *SoxConfig, log logrus.FieldLogger) (*Sox, error) {
	if config == nil {
		config = DefaultSoxConfig()
	}

	if err := checkSoxInstalled(); err != nil {
		return nil, err
	}

	store, err := OpenProfileStore(filepath.Join(config.ProfileDir, "profiles.db"))
	if err != nil {
		return nil, err
	}

	return newSox(config, store, execRunner, log), nil
}

func newSox(config *SoxConfig, store *ProfileStore, run Runner, log logrus.FieldLogger) *Sox {
	return &Sox{
		config: config,
		store:  store,
		run:    run,
		log:    log,
	}
}

// Close releases the profile index
func (s *Sox) Close() error {
	return s.store.Close()
}

// FindNoiseProfile returns the registered profile for username. Profiles
// whose file has gone missing are forgotten.
func (s *Sox) FindNoiseProfile(ctx context.Context, username string) (NoiseProfile, error) {
	profile, err := s.store.Lookup(ctx, username)
	if err != nil || profile == "" {
		return "", err
	}

	if _, err := os.Stat(string(profile)); err != nil {
		s.log.WithError(err).Warnf("Noise profile for %s is gone, forgetting it", username)
		if err := s.store.Forget(ctx, username); err != nil {
			return "", err
		}
		return "", nil
	}

	return profile, nil
}

// Clean normalizes the clip, trims silence at both ends and, when a
// profile is available, removes noise. Without a profile one is sampled
// from the start of the clip first.
func (s *Sox) Clean(ctx context.Context, filename, username string, profile NoiseProfile) (string, NoiseProfile, error) {
	if profile == "" {
		profile = s.createProfile(ctx, filename, username)
	}

	output := CleanedName(filename, s.config.Suffix)
	args := []string{filename, output}
	if profile != "" {
		args = append(args, "noisered", string(profile), formatFloat(s.config.Amount))
	}
	args = append(args,
		"norm", formatFloat(s.config.NormalizeDB),
		"silence", "1", "0.05", "0.5%",
		"reverse",
		"silence", "1", "0.05", "0.5%",
		"reverse",
	)

	if out, err := s.run(ctx, "sox", args...); err != nil {
		return "", profile, fmt.Errorf("sox failed: %w\nOutput: %s", err, string(out))
	}

	return output, profile, nil
}

// createProfile samples the leading audio of filename. It returns "" when
// no profile could be made.
func (s *Sox) createProfile(ctx context.Context, filename, username string) NoiseProfile {
	if err := os.MkdirAll(s.config.ProfileDir, 0755); err != nil {
		s.log.WithError(err).Warn("Failed to create profile directory")
		return ""
	}

	path := filepath.Join(s.config.ProfileDir, internal.SanitizeFilename(username)+".prof")
	out, err := s.run(ctx, "sox", filename, "-n",
		"trim", "0", formatFloat(s.config.SampleSeconds),
		"noiseprof", path)
	if err != nil {
		s.log.WithError(err).WithField("output", strings.TrimSpace(string(out))).
			Warnf("Could not sample a noise profile for %s", username)
		os.Remove(path)
		return ""
	}

	profile := NoiseProfile(path)
	if err := s.store.Save(ctx, username, profile); err != nil {
		// The file is still usable for this run
		s.log.WithError(err).Warn("Noise profile not registered")
	}

	return profile
}

// CleanedName derives the cleaned file name: casa.mp3 becomes casa_clean.mp3
func CleanedName(filename, suffix string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + suffix + ext
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// checkSoxInstalled verifies that sox is available on the system
func checkSoxInstalled() error {
	cmd := exec.Command("sox", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sox is not installed or not in PATH: %w", err)
	}
	return nil
}
