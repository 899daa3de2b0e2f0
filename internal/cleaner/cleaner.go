package cleaner

import "context"

// NoiseProfile locates a per-speaker noise profile. The empty value means
// no profile exists.
type NoiseProfile string

// Cleaner looks up noise profiles and cleans audio files
type Cleaner interface {
	// FindNoiseProfile returns the stored profile for username, or ""
	FindNoiseProfile(ctx context.Context, username string) (NoiseProfile, error)

	// Clean writes a cleaned copy of filename and returns its path with the
	// profile that was used. Passing "" asks for a new profile to be
	// created; the returned profile stays "" if that was aborted.
	Clean(ctx context.Context, filename, username string, profile NoiseProfile) (string, NoiseProfile, error)
}
