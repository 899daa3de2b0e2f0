// Package forvo is a client for the Forvo pronunciation search API. It
// issues a single search request per word and fetches pronunciation audio.
package forvo
