// Package processor contains the core flow of forvodl. It searches Forvo,
// lets the user pick among several matches, saves the clip and then runs
// the optional phonetic notes and cleaning steps. This package serves as
// the main coordinator between all other components.
package processor
