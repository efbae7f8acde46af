package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// Kind is the purpose of an uploaded object.
type Kind string

const (
	KindPhoto      Kind = "photo"
	KindCredential Kind = "credentials"
)

var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrTooLarge        = errors.New("object too large")
)

type uploadRule struct {
	maxBytes int64
	types    map[string]string // content type -> extension
}

var rules = map[Kind]uploadRule{
	KindPhoto: {
		maxBytes: 5 << 20,
		types: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
			"image/webp": ".webp",
		},
	},
	KindCredential: {
		maxBytes: 10 << 20,
		types: map[string]string{
			"application/pdf": ".pdf",
			"image/jpeg":      ".jpg",
			"image/png":       ".png",
		},
	},
}

// CheckUpload validates contentType and size for kind and returns the file
// extension to store the object under.
func CheckUpload(kind Kind, contentType string, size int64) (string, error) {
	rule, ok := rules[kind]
	if !ok {
		return "", ErrUnsupportedType
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := rule.types[ct]
	if !ok {
		return "", ErrUnsupportedType
	}
	if size <= 0 || size > rule.maxBytes {
		return "", ErrTooLarge
	}
	return ext, nil
}

// DetectContentType reads the head of r and reports the content type its
// bytes carry, whatever the client declared. The returned reader yields the
// complete stream, head included.
func DetectContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read upload head: %w", err)
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// SupervisorObjectKey builds supervisors/<user id>/<kind>/<uuid><ext>.
func SupervisorObjectKey(userID string, kind Kind, ext string) string {
	return path.Join("supervisors", userID, string(kind), uuid.NewString()+ext)
}
