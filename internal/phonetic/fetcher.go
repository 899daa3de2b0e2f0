package phonetic

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Fetcher handles fetching phonetic information for words
type Fetcher struct {
	apiKey string
	client *openai.Client
}

// NewFetcher creates a new phonetic information fetcher
func NewFetcher(apiKey string) *Fetcher {
	return newFetcherWithConfig(apiKey, openai.DefaultConfig(apiKey))
}

func newFetcherWithConfig(apiKey string, config openai.ClientConfig) *Fetcher {
	return &Fetcher{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// FileName is where the notes for a clip are stored: casa.mp3 gets
// casa.phonetic.txt
func FileName(audioFile string) string {
	return strings.TrimSuffix(audioFile, ".mp3") + ".phonetic.txt"
}

// FetchAndSave fetches phonetic information for a word and writes it to
// outputFile. language is a Forvo language code and may be empty.
func (f *Fetcher) FetchAndSave(ctx context.Context, word, language, outputFile string) error {
	if f.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phonetics expert helping language learners understand pronunciation. Provide detailed phonetic information using the International Phonetic Alphabet (IPA). For each IPA symbol used, give concrete examples of how it sounds using familiar English words or sounds when possible.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(word, language),
			},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	}

	resp, err := f.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fmt.Errorf("no response from OpenAI")
	}

	phoneticInfo := strings.TrimSpace(resp.Choices[0].Message.Content)

	if err := os.WriteFile(outputFile, []byte(phoneticInfo+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write phonetic file: %w", err)
	}

	return nil
}

func buildPrompt(word, language string) string {
	subject := fmt.Sprintf("the word '%s'", word)
	if language != "" {
		subject = fmt.Sprintf("the word '%s' (language code '%s')", word, language)
	}

	return fmt.Sprintf(`For %s:
1. Provide the complete IPA transcription
2. Break down EACH phonetic symbol used in the transcription
3. For EVERY symbol, explain how it's pronounced with examples:
   - If similar to an English sound, give English word examples
   - If not in English, describe tongue/mouth position or compare to similar sounds
   - Include stress marks and explain which syllable is stressed

Example format:
Word: [IPA transcription]
• /p/ - like 'p' in English 'pot'
• /a/ - like 'a' in 'father'
• /ˈ/ - stress mark (following syllable is stressed)`, subject)
}
