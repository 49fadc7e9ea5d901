package service

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// TokenEncoding is the BPE vocabulary narratives are measured with.
const TokenEncoding = "cl100k_base"

var ErrTokenizerUnavailable = errors.New("tokenizer unavailable")

// TokenCount is a context-size measure for a text.
type TokenCount struct {
	Tokens int `json:"tokens"`
	Chars  int `json:"chars"`
}

// loadEncoding reads the embedded BPE ranks once; no network access.
var loadEncoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	return tiktoken.GetEncoding(TokenEncoding)
})

// CountTokens encodes text with the TokenEncoding vocabulary. Chars is the
// rune count.
func CountTokens(text string) (TokenCount, error) {
	count := TokenCount{Chars: utf8.RuneCountInString(text)}
	if text == "" {
		return count, nil
	}

	enc, err := loadEncoding()
	if err != nil {
		return count, fmt.Errorf("%w: %v", ErrTokenizerUnavailable, err)
	}
	count.Tokens = len(enc.Encode(text, nil, nil))
	return count, nil
}
