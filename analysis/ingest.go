package analysis

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	// ImageFieldName is the multipart field the upload is expected in.
	ImageFieldName = "image"

	// MaxUploadBytes is the hard cap on accumulated image bytes.
	MaxUploadBytes = 10 << 20
)

// RawUpload is the untrusted payload extracted from a request body. The
// content type is whatever the client declared and is never used for
// format decisions.
type RawUpload struct {
	Data        []byte
	ContentType string
}

// ReadUpload extracts the raw image bytes from a request body. Multipart
// bodies are scanned for the first "image" field; anything else is treated
// as a base64-encoded blob.
func ReadUpload(r *http.Request) (*RawUpload, *Error) {
	contentType := r.Header.Get("Content-Type")

	if strings.Contains(contentType, "multipart/form-data") {
		return readMultipart(r, contentType)
	}

	return readBase64Body(r)
}

func readMultipart(r *http.Request, contentType string) (*RawUpload, *Error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, badRequest("malformed multipart request", err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, badRequest("malformed multipart request", nil)
	}

	mr := multipart.NewReader(r.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, badRequest("malformed multipart request", err)
		}

		if part.FormName() != ImageFieldName {
			// Drain non-matching parts without buffering them.
			io.Copy(io.Discard, part)
			part.Close()
			continue
		}

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(part, MaxUploadBytes+1))
		part.Close()
		if err != nil {
			return nil, badRequest("failed to read image data", err)
		}
		if n > MaxUploadBytes {
			return nil, badRequest("payload too large", nil)
		}
		if n == 0 {
			return nil, badRequest("no image data received", nil)
		}

		return &RawUpload{
			Data:        buf.Bytes(),
			ContentType: part.Header.Get("Content-Type"),
		}, nil
	}

	return nil, badRequest("no image data received", nil)
}

func readBase64Body(r *http.Request) (*RawUpload, *Error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxUploadBytes*2))
	if err != nil {
		return nil, badRequest("failed to read request body", err)
	}

	encoded := stripDataURL(strings.TrimSpace(string(body)))
	if encoded == "" {
		return nil, badRequest("no image data received", nil)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil, badRequest("no image data received", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, badRequest("payload too large", nil)
	}

	return &RawUpload{
		Data:        data,
		ContentType: r.Header.Get("Content-Type"),
	}, nil
}

// stripDataURL removes a leading data:<mime>;base64, prefix if present, so
// clients may send either a bare base64 body or a full data URL.
func stripDataURL(s string) string {
	if i := strings.Index(s, ","); i != -1 && strings.HasPrefix(strings.ToLower(s[:i]), "data:") {
		return s[i+1:]
	}
	return s
}
