package cli

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/forvodl/internal"
)

// configSection is the only INI section read from the config file
const configSection = "downloader"

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forvodl [flags] WORD",
		Short: "Forvo pronunciation downloader",
		Long: `forvodl searches Forvo for a word and saves a pronunciation as
<word>.mp3 in the current directory.

When several pronunciations match, a numbered list is shown and one is
chosen by index. With --clean the clip is run through SoX noise reduction
using a per-speaker noise profile.

Config file (INI, default ` + DefaultConfigLocation + `):
  [downloader]
  api_key = YOUR_FORVO_KEY
  language = bg
  clean = yes

Examples:
  forvodl ябълка                  # Download a pronunciation
  forvodl -l es -n casa           # Spanish only, cleaned
  forvodl --pick 2 hello          # Take the third match without asking`,
		Args:          cobra.ExactArgs(1),
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVarP(&flags.CfgFile, "conf-file", "c", flags.CfgFile, "Specify config file location")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Print diagnostic logs to stderr")

	// Local flags
	cmd.Flags().StringVarP(&flags.APIKey, "api-key", "k", "", "Forvo API key")
	cmd.Flags().StringVarP(&flags.Language, "language", "l", "", "Forvo language code (see https://forvo.com/languages-codes/)")
	cmd.Flags().BoolVarP(&flags.Clean, "clean", "n", false, "Clean the Forvo result (normalize, remove noise, and trim silence)")
	cmd.Flags().BoolVar(&flags.Phonetic, "phonetic", false, "Save IPA notes for the word next to the audio (needs an OpenAI key)")
	cmd.Flags().IntVarP(&flags.Pick, "pick", "p", flags.Pick, "Select this result index instead of prompting (negative prompts)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP timeout for search and download")
}

// ArgsLayer returns the configuration given explicitly on the command line.
// Flags left at their defaults do not override the config file.
func ArgsLayer(cmd *cobra.Command, flags *Flags) Layer {
	var layer Layer
	if cmd.Flags().Changed("api-key") {
		layer.APIKey = flags.APIKey
	}
	if cmd.Flags().Changed("language") {
		layer.Language = flags.Language
	}
	layer.Clean = flags.Clean
	layer.Phonetic = flags.Phonetic
	return layer
}

// LoadConfigFile reads the INI config file at path. A missing or unreadable
// file is not an error, it just yields no defaults. FORVO_API_KEY and
// OPENAI_API_KEY override the corresponding file keys.
func LoadConfigFile(path string, log logrus.FieldLogger) Layer {
	v := viper.New()
	v.SetConfigType("ini")
	_ = v.BindEnv(configKey("api_key"), "FORVO_API_KEY")
	_ = v.BindEnv(configKey("openai_key"), "OPENAI_API_KEY")

	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			log.WithError(err).Debug("Ignoring config file")
		} else {
			v.SetConfigFile(expanded)
			if err := v.ReadInConfig(); err != nil {
				log.WithError(err).Debugf("No usable config file at %s", expanded)
			} else {
				log.Debugf("Using config file: %s", v.ConfigFileUsed())
			}
		}
	}

	return Layer{
		APIKey:     v.GetString(configKey("api_key")),
		Language:   v.GetString(configKey("language")),
		OpenAIKey:  v.GetString(configKey("openai_key")),
		ProfileDir: v.GetString(configKey("profile_dir")),
		Clean:      parseBool(v.GetString(configKey("clean"))),
		Phonetic:   parseBool(v.GetString(configKey("phonetic"))),
	}
}

func configKey(name string) string {
	return configSection + "." + name
}

// parseBool accepts the usual INI spellings of a boolean
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "on":
		return true
	default:
		return false
	}
}
