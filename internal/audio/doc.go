// Package audio saves pronunciation clips to disk.
package audio
