package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingCredential is returned when no API key can be resolved from
// either the arguments or the config file
var ErrMissingCredential = errors.New("must provide API key via `-k` option or in config file")

// Layer is one configuration source. Zero values mean "not set".
type Layer struct {
	APIKey     string
	Language   string
	OpenAIKey  string
	ProfileDir string
	Clean      bool
	Phonetic   bool
}

// Settings is the resolved configuration for a single run
type Settings struct {
	APIKey   string
	Language string
	Word     string
	Clean    bool

	// Phonetic enables IPA notes next to the downloaded clip
	Phonetic  bool
	OpenAIKey string

	// ProfileDir holds noise profiles, empty means the default state dir
	ProfileDir string
}

// Merge resolves settings from the config file layer and the argument
// layer. Arguments take precedence; boolean switches are enabled by either
// source since a flag can only turn them on.
func Merge(file, args Layer, word string) (Settings, error) {
	s := Settings{
		APIKey:     pick(args.APIKey, file.APIKey),
		Language:   pick(args.Language, file.Language),
		Word:       word,
		Clean:      args.Clean || file.Clean,
		Phonetic:   args.Phonetic || file.Phonetic,
		OpenAIKey:  pick(args.OpenAIKey, file.OpenAIKey),
		ProfileDir: pick(args.ProfileDir, file.ProfileDir),
	}

	if s.APIKey == "" {
		return Settings{}, ErrMissingCredential
	}
	if strings.TrimSpace(s.Word) == "" {
		return Settings{}, fmt.Errorf("word cannot be empty")
	}

	return s, nil
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
