// Package phonetic fetches IPA notes for a downloaded word using OpenAI's
// GPT models, so the clip can be studied together with a transcription.
package phonetic
