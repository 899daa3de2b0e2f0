// Package selector chooses one pronunciation when a search returns several.
// The choice is made by a Selector, either an interactive prompt or a fixed
// index given up front.
package selector
