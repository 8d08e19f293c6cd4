package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/siamt-api/internal/models"
)

const (
	// maxFieldSize bounds a single text field of an upload form
	maxFieldSize = 64 * 1024
	// formOverhead is what the body may carry beyond the file itself:
	// boundaries, part headers and text fields
	formOverhead = 8 * maxFieldSize
)

var (
	errFileTooLarge     = errors.New("request body too large")
	errFieldTooLarge    = errors.New("form field too large")
	errInvalidMultipart = errors.New("invalid multipart request")
)

// uploadForm is the parsed body of an artifact upload
type uploadForm struct {
	fields map[string]string
	file   *models.FileUpload
}

// value returns the first non-empty value among the given field names
func (f *uploadForm) value(names ...string) string {
	for _, name := range names {
		if v := f.fields[name]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// readUpload streams the multipart body part by part. The kept file may be
// up to maxSize bytes and each text field up to maxFieldSize bytes; the body
// as a whole is capped at maxSize plus formOverhead. Only the first file
// part is kept; later ones are drained. For repeated text fields the first
// value wins.
func readUpload(c *gin.Context, maxSize int64) (*uploadForm, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+formOverhead)

	reader, err := c.Request.MultipartReader()
	if err != nil {
		return nil, errInvalidMultipart
	}

	form := &uploadForm{fields: make(map[string]string)}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, bodyError(err)
		}

		if part.FileName() != "" {
			if form.file != nil {
				if _, err := io.Copy(io.Discard, part); err != nil {
					part.Close()
					return nil, bodyError(err)
				}
				part.Close()
				continue
			}
			data, err := readLimited(part, maxSize)
			part.Close()
			if errors.Is(err, errPartTooLarge) {
				return nil, errFileTooLarge
			}
			if err != nil {
				return nil, bodyError(err)
			}
			form.file = &models.FileUpload{
				Name:        part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			}
			continue
		}

		name := part.FormName()
		value, err := readLimited(part, maxFieldSize)
		part.Close()
		if errors.Is(err, errPartTooLarge) {
			return nil, errFieldTooLarge
		}
		if err != nil {
			return nil, bodyError(err)
		}
		if _, seen := form.fields[name]; !seen && name != "" {
			form.fields[name] = string(value)
		}
	}

	return form, nil
}

var errPartTooLarge = errors.New("part exceeds limit")

// readLimited reads r to the end, failing with errPartTooLarge once more
// than limit bytes arrive
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errPartTooLarge
	}
	return data, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errFileTooLarge
	}
	// mime/multipart does not wrap every read error
	if strings.Contains(err.Error(), "request body too large") {
		return errFileTooLarge
	}
	return errInvalidMultipart
}
