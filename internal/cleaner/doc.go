// Package cleaner removes background noise from downloaded pronunciations.
//
// Noise reduction is delegated to SoX. Each Forvo contributor records in
// their own environment, so a noise profile is kept per username and
// reused for every later clip by the same speaker. Profiles live as SoX
// .prof files and are indexed in a small SQLite database.
package cleaner
