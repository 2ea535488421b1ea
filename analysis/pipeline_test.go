package analysis

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plantpal/plant-analysis-service/models"
)

type fakeAnalyzer struct {
	reply          string
	err            error
	gotInstruction string
	gotDataURL     string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, instruction, imageDataURL string) (string, error) {
	f.gotInstruction = instruction
	f.gotDataURL = imageDataURL
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func uploadRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(ImageFieldName, "plant.png")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze-plant", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48))))
	return buf.Bytes()
}

func TestPipelineAnalyzeSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{
		reply: "```json\n{\"commonName\":\"Rose\",\"scientificName\":\"Rosa\"}\n```",
	}
	p := NewPipeline(analyzer, zap.NewNop())

	timings := &models.StageTimings{RequestID: "test"}
	result, perr := p.Analyze(context.Background(), uploadRequest(t, smallPNG(t)), timings)

	require.Nil(t, perr)
	assert.Equal(t, "Rose", result["commonName"])
	assert.Equal(t, "Rosa", result["scientificName"])

	// The model always receives a JPEG data URL, whatever came in.
	assert.True(t, strings.HasPrefix(analyzer.gotDataURL, "data:image/jpeg;base64,"))
	assert.NotEmpty(t, analyzer.gotInstruction)
}

func TestPipelineAnalyzeUnsupportedUpload(t *testing.T) {
	p := NewPipeline(&fakeAnalyzer{}, zap.NewNop())

	timings := &models.StageTimings{}
	result, perr := p.Analyze(context.Background(), uploadRequest(t, []byte{0x00, 0x00, 0x00, 0x00}), timings)

	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, KindUnsupportedFormat, perr.Kind)
	assert.Equal(t, http.StatusBadRequest, perr.HTTPStatus())
}

func TestPipelineAnalyzeUpstreamFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("dial tcp: connection refused")}
	p := NewPipeline(analyzer, zap.NewNop())

	timings := &models.StageTimings{}
	result, perr := p.Analyze(context.Background(), uploadRequest(t, smallPNG(t)), timings)

	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, KindUpstreamFailure, perr.Kind)
	assert.Equal(t, http.StatusInternalServerError, perr.HTTPStatus())
}

func TestPipelineAnalyzeEmptyModelReply(t *testing.T) {
	p := NewPipeline(&fakeAnalyzer{reply: ""}, zap.NewNop())

	timings := &models.StageTimings{}
	result, perr := p.Analyze(context.Background(), uploadRequest(t, smallPNG(t)), timings)

	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, KindParseFailure, perr.Kind)
	assert.Equal(t, http.StatusInternalServerError, perr.HTTPStatus())
}

func TestPipelineAnalyzeGarbageReplyStillAnswers(t *testing.T) {
	p := NewPipeline(&fakeAnalyzer{reply: "I have no idea, sorry!"}, zap.NewNop())

	timings := &models.StageTimings{}
	result, perr := p.Analyze(context.Background(), uploadRequest(t, smallPNG(t)), timings)

	require.Nil(t, perr)
	assert.Equal(t, UnknownValue, result["commonName"])
	assert.Equal(t, UnknownValue, result["scientificName"])
}

func TestPipelineAnalyzeMissingBody(t *testing.T) {
	p := NewPipeline(&fakeAnalyzer{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/analyze-plant", bytes.NewReader(nil))
	timings := &models.StageTimings{}
	result, perr := p.Analyze(context.Background(), req, timings)

	assert.Nil(t, result)
	require.NotNil(t, perr)
	assert.Equal(t, KindBadRequest, perr.Kind)
}
