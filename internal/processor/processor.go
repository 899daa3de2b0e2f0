package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/forvodl/internal/audio"
	"codeberg.org/snonux/forvodl/internal/cleaner"
	"codeberg.org/snonux/forvodl/internal/cli"
	"codeberg.org/snonux/forvodl/internal/forvo"
	"codeberg.org/snonux/forvodl/internal/phonetic"
	"codeberg.org/snonux/forvodl/internal/selector"
)

// ErrNoResults is returned after "No results found." has been printed
var ErrNoResults = errors.New("no results found")

// Searcher finds pronunciations for a word
type Searcher interface {
	Search(ctx context.Context, word, language string) ([]forvo.SearchResult, error)
}

// Saver stores a chosen pronunciation and returns its file name
type Saver interface {
	Save(ctx context.Context, result forvo.SearchResult) (string, error)
}

// PhoneticFetcher writes IPA notes for a word
type PhoneticFetcher interface {
	FetchAndSave(ctx context.Context, word, language, outputFile string) error
}

// Options configures the components built by NewProcessor
type Options struct {
	Pick      int           // Fixed selection index, negative prompts
	Timeout   time.Duration // HTTP timeout
	BaseURL   string        // Forvo endpoint, empty for the default
	OutputDir string        // Where clips are saved, empty for "."
	In        io.Reader
	Out       io.Writer
	Log       logrus.FieldLogger
}

// Dependencies are the collaborators of a Processor
type Dependencies struct {
	Searcher   Searcher
	Saver      Saver
	Selector   selector.Selector
	Cleaner    cleaner.Cleaner                 // Only used when cleaning is enabled
	NewCleaner func() (cleaner.Cleaner, error) // Builds Cleaner on first use
	Phonetic   PhoneticFetcher                 // Only used when phonetic notes are enabled
	OutputDir  string
	Out        io.Writer
	Log        logrus.FieldLogger
}

// Processor runs one search-select-download-clean sequence
type Processor struct {
	settings cli.Settings
	deps     Dependencies
	closers  []io.Closer
}

// NewProcessor wires the real components for settings
func NewProcessor(settings cli.Settings, opts Options) (*Processor, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	clientConfig := forvo.DefaultClientConfig(settings.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		clientConfig.Timeout = opts.Timeout
	}
	client := forvo.NewClient(clientConfig, opts.Log)

	var sel selector.Selector = selector.NewPrompt(opts.In, opts.Out)
	if opts.Pick >= 0 {
		sel = selector.Fixed(opts.Pick)
	}

	deps := Dependencies{
		Searcher:  client,
		Saver:     audio.NewDownloader(client, &audio.DownloadOptions{OutputDir: opts.OutputDir}, opts.Log),
		Selector:  sel,
		OutputDir: opts.OutputDir,
		Out:       opts.Out,
		Log:       opts.Log,
	}

	if settings.Phonetic {
		deps.Phonetic = phonetic.NewFetcher(settings.OpenAIKey)
	}

	if settings.Clean {
		deps.NewCleaner = func() (cleaner.Cleaner, error) {
			return newSoxCleaner(settings, opts.Log)
		}
	}

	return newProcessor(settings, deps), nil
}

// newSoxCleaner opens the SoX cleaner with the configured profile directory
func newSoxCleaner(settings cli.Settings, log logrus.FieldLogger) (*cleaner.Sox, error) {
	soxConfig := cleaner.DefaultSoxConfig()
	if settings.ProfileDir != "" {
		dir, err := cli.ExpandPath(settings.ProfileDir)
		if err != nil {
			return nil, err
		}
		soxConfig.ProfileDir = dir
	}

	sox, err := cleaner.NewSox(soxConfig, log)
	if err != nil {
		return nil, fmt.Errorf("cleaning unavailable: %w", err)
	}
	return sox, nil
}

func newProcessor(settings cli.Settings, deps Dependencies) *Processor {
	if deps.OutputDir == "" {
		deps.OutputDir = "."
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Processor{
		settings: settings,
		deps:     deps,
	}
}

// Close releases resources held by the components
func (p *Processor) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Run searches for the configured word and saves one pronunciation. When
// nothing matches it prints "No results found." and returns ErrNoResults
// without touching the disk.
func (p *Processor) Run(ctx context.Context) error {
	results, err := p.deps.Searcher.Search(ctx, p.settings.Word, p.settings.Language)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(p.deps.Out, "No results found.")
		return ErrNoResults
	}

	result, err := selector.Disambiguate(results, p.deps.Selector)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	filename, err := p.deps.Saver.Save(ctx, result)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.deps.Out, "Saved pronunciation to ./%s\n", filename)

	if p.settings.Phonetic {
		p.fetchPhonetic(ctx, result, filename)
	}

	if p.settings.Clean {
		return p.clean(ctx, result, filename)
	}

	return nil
}

// fetchPhonetic saves IPA notes next to the clip. Failures only warn.
func (p *Processor) fetchPhonetic(ctx context.Context, result forvo.SearchResult, filename string) {
	if p.deps.Phonetic == nil {
		return
	}

	notesFile := phonetic.FileName(filename)
	fmt.Fprintf(p.deps.Out, "Fetching phonetic information...\n")
	err := p.deps.Phonetic.FetchAndSave(ctx, result.Original, p.settings.Language,
		filepath.Join(p.deps.OutputDir, notesFile))
	if err != nil {
		fmt.Fprintf(p.deps.Out, "Warning: Failed to fetch phonetic info: %v\n", err)
		return
	}
	fmt.Fprintf(p.deps.Out, "Saved phonetic information to ./%s\n", notesFile)
}

// clean looks up the speaker's noise profile and hands the clip to the
// cleaner, reporting whether a new profile was made
func (p *Processor) clean(ctx context.Context, result forvo.SearchResult, filename string) error {
	cl, err := p.cleaner()
	if err != nil {
		return err
	}

	fmt.Fprintln(p.deps.Out, "Cleaning..")

	username := result.Pronunciation.Username
	profile, err := cl.FindNoiseProfile(ctx, username)
	if err != nil {
		return fmt.Errorf("noise profile lookup failed: %w", err)
	}

	if profile == "" {
		fmt.Fprintf(p.deps.Out, "No noise profile exists for %s. We will try to create one.\n", username)
	}

	cleaned, newProfile, err := cl.Clean(ctx, filepath.Join(p.deps.OutputDir, filename), username, profile)
	if err != nil {
		return fmt.Errorf("cleaning failed: %w", err)
	}

	if profile == "" {
		if newProfile == "" {
			fmt.Fprintln(p.deps.Out, "Noise profile creation aborted.")
		} else {
			fmt.Fprintf(p.deps.Out, "Saved new profile to %s\n", newProfile)
		}
	}

	fmt.Fprintf(p.deps.Out, "Cleaned pronunciation saved to ./%s\n", filepath.Base(cleaned))
	return nil
}

// cleaner returns the configured cleaner, building it on first use so that
// a missing sox only matters once there is something to clean
func (p *Processor) cleaner() (cleaner.Cleaner, error) {
	if p.deps.Cleaner != nil {
		return p.deps.Cleaner, nil
	}
	if p.deps.NewCleaner == nil {
		return nil, fmt.Errorf("cleaning requested but no cleaner is configured")
	}

	cl, err := p.deps.NewCleaner()
	if err != nil {
		return nil, err
	}
	if c, ok := cl.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}
	p.deps.Cleaner = cl
	return cl, nil
}
