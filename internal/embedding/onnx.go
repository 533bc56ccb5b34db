//go:build onnx

package embedding

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/contextweave/contextweave/internal/config"
)

// maxSequenceLength is the token window for MiniLM-class models.
const maxSequenceLength = 128

var ortInitOnce sync.Once

// modelEmbedder encodes text with an ONNX sentence-embedding model
// (all-MiniLM-L6-v2 or compatible: BERT-style inputs, last_hidden_state
// output, mean pooling).
type modelEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
	mu         sync.Mutex
}

// newModelEmbedder loads the configured ONNX model and tokenizer.
func newModelEmbedder(cfg *config.Config) (Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("no model configured")
	}

	ortInitOnce.Do(func() {
		if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY"); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
	})
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	tokenizer, err := loadWordPieceTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &modelEmbedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed encodes text and mean-pools the hidden states into one vector.
func (m *modelEmbedder) Embed(text string) ([]float32, error) {
	tokens := m.tokenizer.Tokenize(text)

	inputIDs := make([]int64, maxSequenceLength)
	attentionMask := make([]int64, maxSequenceLength)
	tokenTypeIDs := make([]int64, maxSequenceLength)

	inputIDs[0] = int64(m.tokenizer.clsToken)
	attentionMask[0] = 1

	tokenLen := len(tokens)
	if tokenLen > maxSequenceLength-2 {
		tokenLen = maxSequenceLength - 2
	}
	for i := 0; i < tokenLen; i++ {
		inputIDs[i+1] = tokens[i]
		attentionMask[i+1] = 1
	}
	inputIDs[tokenLen+1] = int64(m.tokenizer.sepToken)
	attentionMask[tokenLen+1] = 1

	shape := ort.NewShape(1, int64(maxSequenceLength))

	inputTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer inputTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}

	// Sessions are not safe for concurrent Run calls.
	m.mu.Lock()
	err = m.session.Run([]ort.Value{inputTensor, maskTensor, typeTensor}, outputs)
	m.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, fmt.Errorf("no output tensors returned")
	}
	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	vec, err := m.pool(tensor.GetData(), tensor.GetShape(), attentionMask)
	if err != nil {
		return nil, err
	}

	return normalize(vec), nil
}

// pool reduces model output to a single vector. A 2D output is already
// pooled; a 3D output is mean-pooled over attended tokens.
func (m *modelEmbedder) pool(data []float32, shape ort.Shape, attentionMask []int64) ([]float32, error) {
	switch len(shape) {
	case 2:
		if len(data) < m.dimensions {
			return nil, fmt.Errorf("output dimension mismatch: got %d, expected %d", len(data), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, data[:m.dimensions])
		return vec, nil

	case 3:
		seqLen := int(shape[1])
		hidden := int(shape[2])
		if shape[0] != 1 {
			return nil, fmt.Errorf("expected batch size 1, got %d", shape[0])
		}
		if hidden != m.dimensions {
			return nil, fmt.Errorf("hidden size mismatch: got %d, expected %d", hidden, m.dimensions)
		}

		vec := make([]float32, hidden)
		attended := float32(0)
		for i := 0; i < seqLen && i < len(attentionMask); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < hidden; j++ {
				vec[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return nil, fmt.Errorf("no attended tokens")
		}
		for j := range vec {
			vec[j] /= attended
		}
		return vec, nil

	default:
		return nil, fmt.Errorf("unexpected output shape: %v", shape)
	}
}

// Dimensions returns the embedding vector size.
func (m *modelEmbedder) Dimensions() int {
	return m.dimensions
}
