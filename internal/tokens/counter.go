// Package tokens estimates prompt sizes for logging and tracing.
package tokens

import (
	"math"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// defaultCharsPerToken is used when no tokenizer codec can be loaded.
const defaultCharsPerToken = 4.0

// Counter estimates token counts for text sent to the model. Gemini does not
// publish an offline tokenizer, so cl100k_base serves as a close proxy.
type Counter struct {
	encoding tokenizer.Encoding

	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewCounter creates a counter backed by the cl100k_base encoding.
func NewCounter() *Counter {
	return &Counter{encoding: tokenizer.Cl100kBase}
}

func (c *Counter) load() (tokenizer.Codec, error) {
	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(c.encoding)
	})
	return c.codec, c.err
}

// Count returns the token count of text. Estimated is true when the count
// came from the character heuristic rather than the tokenizer.
func (c *Counter) Count(text string) (n int, estimated bool) {
	if text == "" {
		return 0, false
	}

	codec, err := c.load()
	if err == nil {
		ids, _, err := codec.Encode(text)
		if err == nil {
			return len(ids), false
		}
	}

	return int(math.Ceil(float64(len(text)) / defaultCharsPerToken)), true
}
