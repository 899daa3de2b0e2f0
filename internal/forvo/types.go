package forvo

import "fmt"

// Pronunciation is the standard pronunciation attached to a search result
type Pronunciation struct {
	Username string `json:"username"` // Contributing Forvo user
	AddTime  string `json:"addtime"`  // Submission time as sent by Forvo
	AudioURL string `json:"pathmp3"`  // Direct MP3 URL
}

// SearchResult is one matched word entry
type SearchResult struct {
	Original      string         `json:"original"`
	Pronunciation *Pronunciation `json:"standard_pronunciation"`
}

// searchResponse is the subset of the API response we use
type searchResponse struct {
	Items *[]SearchResult `json:"items"`
}

// NetworkError is returned when a request fails in transport or the
// server answers with a non-200 status
type NetworkError struct {
	Op         string // "search" or "download"
	StatusCode int    // 0 on transport failure
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("forvo %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("forvo %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when the search body is not valid
// JSON or lacks the expected fields
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed forvo response: %s: %v", e.Reason, e.Err)
	}
	return "malformed forvo response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
