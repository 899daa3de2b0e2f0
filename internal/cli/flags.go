package cli

import "time"

// DefaultConfigLocation is used when --conf-file is not given
const DefaultConfigLocation = "~/.forvo_downloader.cfg"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string
	Verbose bool
	Timeout time.Duration

	// Search and download flags
	APIKey   string
	Language string
	Pick     int

	// Post-processing flags
	Clean    bool
	Phonetic bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		CfgFile: DefaultConfigLocation,
		Timeout: 30 * time.Second,
		Pick:    -1,
	}
}
