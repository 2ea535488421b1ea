package analysis

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/plantpal/plant-analysis-service/models"
)

// Analyzer is the outbound vision-model capability. Implementations receive
// the fixed instruction plus the image as a data URL and return the model's
// raw text reply.
type Analyzer interface {
	Analyze(ctx context.Context, instruction, imageDataURL string) (string, error)
}

// Pipeline sequences ingest, format sniff, normalization, the model call
// and response parsing for one request. It holds no mutable state across
// invocations; concurrent requests are independent.
type Pipeline struct {
	analyzer Analyzer
	fields   []Field
	log      *zap.Logger
}

func NewPipeline(analyzer Analyzer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		analyzer: analyzer,
		fields:   ResultFields,
		log:      log,
	}
}

// Analyze runs the full upload-to-result pipeline. Every failure comes back
// as a tagged *Error; the caller owns the mapping to transport status codes.
func (p *Pipeline) Analyze(ctx context.Context, r *http.Request, timings *models.StageTimings) (Result, *Error) {
	start := time.Now()
	upload, perr := ReadUpload(r)
	timings.Ingest = time.Since(start)
	if perr != nil {
		return nil, perr
	}

	// Cheap magic-byte pre-filter. UNKNOWN is not rejected here; the
	// decoder gets the final say on formats the table doesn't list.
	start = time.Now()
	format := SniffFormat(upload.Data)
	timings.Sniff = time.Since(start)
	p.log.Debug("sniffed upload format",
		zap.String("request_id", timings.RequestID),
		zap.String("format", string(format)),
		zap.String("declared_content_type", upload.ContentType),
		zap.Int("bytes", len(upload.Data)))

	start = time.Now()
	img, perr := Normalize(upload.Data)
	timings.Normalize = time.Since(start)
	if perr != nil {
		return nil, perr
	}

	req := BuildRequest(img)

	start = time.Now()
	text, err := p.analyzer.Analyze(ctx, req.Instruction, req.ImageDataURL)
	timings.ModelCall = time.Since(start)
	if err != nil {
		return nil, upstreamFailure("vision model call failed", err)
	}

	start = time.Now()
	result, perr := ParseResponse(text, p.fields)
	timings.Parse = time.Since(start)
	if perr != nil {
		return nil, perr
	}

	return result, nil
}
