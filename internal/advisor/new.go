package advisor

import (
	"github.com/nguyentantai21042004/podcast-flow/internal/gemini"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

type implAdvisor struct {
	client      *gemini.Client
	model       string
	sampleLimit int
	logger      logger.Logger
}

// New creates a Gemini-backed Service. sampleLimit bounds how many runes of
// the document are sent to the model.
func New(client *gemini.Client, model string, sampleLimit int, log logger.Logger) Service {
	return &implAdvisor{
		client:      client,
		model:       model,
		sampleLimit: sampleLimit,
		logger:      log,
	}
}
