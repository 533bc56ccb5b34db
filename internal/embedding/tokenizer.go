//go:build onnx

package embedding

import (
	"encoding/json"
	"os"
	"strings"
)

// BERT special token ids shared by MiniLM-family vocabularies.
const (
	clsTokenID = 101
	sepTokenID = 102
	unkTokenID = 100
)

// wordPieceTokenizer implements BERT-style WordPiece tokenization against a
// vocabulary loaded from a tokenizer.json file.
type wordPieceTokenizer struct {
	vocab    map[string]int
	clsToken int
	sepToken int
	unkToken int
}

// loadWordPieceTokenizer reads the vocabulary out of tokenizer.json.
func loadWordPieceTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tokenizerData struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &tokenizerData); err != nil {
		return nil, err
	}

	return &wordPieceTokenizer{
		vocab:    tokenizerData.Model.Vocab,
		clsToken: clsTokenID,
		sepToken: sepTokenID,
		unkToken: unkTokenID,
	}, nil
}

// Tokenize converts text to token ids, splitting unknown words into
// WordPiece subwords.
func (t *wordPieceTokenizer) Tokenize(text string) []int64 {
	// BERT uncased models expect lowercased input.
	words := strings.Fields(strings.ToLower(text))

	var tokens []int64
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}

		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}

		for _, subword := range t.wordPiece(word) {
			if id, ok := t.vocab[subword]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, int64(t.unkToken))
			}
		}
	}

	return tokens
}

// wordPiece splits a word into the longest matching vocabulary pieces,
// prefixing continuations with "##".
func (t *wordPieceTokenizer) wordPiece(word string) []string {
	var subwords []string
	start := 0

	for start < len(word) {
		end := len(word)
		found := false

		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				subwords = append(subwords, piece)
				start = end
				found = true
				break
			}
			end--
		}

		if !found {
			subwords = append(subwords, "[UNK]")
			start++
		}
	}

	return subwords
}
