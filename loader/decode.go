package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/robinvdvleuten/prisma/grammar"
	"gopkg.in/yaml.v3"
)

// Decoding stages reported by DecodeError.
const (
	StageBase64 = "base64"
	StageGzip   = "gzip"
	StageJSON   = "json"
	StageYAML   = "yaml"
)

// maxLayers bounds how many transport layers are unwrapped.
const maxLayers = 4

var (
	// ErrTooLarge is returned when decompressed data exceeds the size limit.
	ErrTooLarge = errors.New("bundle exceeds size limit")

	// ErrTooManyLayers is returned for data that keeps decoding into
	// another transport layer.
	ErrTooManyLayers = errors.New("too many encoding layers")
)

// DecodeError reports the stage at which a bundle failed to decode.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode decodes a bundle with the default size limit.
func Decode(data []byte) (*grammar.Bundle, error) {
	return New().decode(data)
}

func (l *Loader) decode(data []byte) (*grammar.Bundle, error) {
	for layer := 0; layer < maxLayers; layer++ {
		trimmed := bytes.TrimSpace(data)

		switch {
		case bytes.HasPrefix(trimmed, gzipMagic):
			log.Debug("decoding gzip layer")
			out, err := l.gunzip(trimmed)
			if err != nil {
				return nil, &DecodeError{Stage: StageGzip, Err: err}
			}
			data = out

		case len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '['):
			return decodeJSON(trimmed)

		default:
			if out, ok := unbase64(trimmed); ok {
				log.Debug("decoding base64 layer")
				data = out
				continue
			}
			return decodeYAML(trimmed)
		}
	}

	return nil, &DecodeError{Stage: StageBase64, Err: ErrTooManyLayers}
}

func (l *Loader) gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	limit := l.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}

// unbase64 decodes data when it is standard base64, ignoring line breaks,
// and the result is another recognizable layer.
func unbase64(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	compact := bytes.Join(bytes.Fields(data), nil)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(compact)))
	n, err := base64.StdEncoding.Decode(out, compact)
	if err != nil {
		return nil, false
	}
	out = bytes.TrimSpace(out[:n])
	if bytes.HasPrefix(out, gzipMagic) || (len(out) > 0 && (out[0] == '{' || out[0] == '[')) {
		return out, true
	}
	return nil, false
}

func decodeJSON(data []byte) (*grammar.Bundle, error) {
	if data[0] == '[' {
		var defs []grammar.Definition
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, &DecodeError{Stage: StageJSON, Err: err}
		}
		return &grammar.Bundle{Languages: defs}, nil
	}

	var bundle grammar.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, &DecodeError{Stage: StageJSON, Err: err}
	}
	return &bundle, nil
}

func decodeYAML(data []byte) (*grammar.Bundle, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Stage: StageYAML, Err: err}
	}
	if len(root.Content) == 0 {
		return &grammar.Bundle{}, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var defs []grammar.Definition
		if err := doc.Decode(&defs); err != nil {
			return nil, &DecodeError{Stage: StageYAML, Err: err}
		}
		return &grammar.Bundle{Languages: defs}, nil

	case yaml.MappingNode:
		var bundle grammar.Bundle
		if err := doc.Decode(&bundle); err != nil {
			return nil, &DecodeError{Stage: StageYAML, Err: err}
		}
		return &bundle, nil

	default:
		return nil, &DecodeError{Stage: StageYAML, Err: fmt.Errorf("expected a mapping or a list of languages, got %q", doc.Value)}
	}
}

// Encode writes bundle in the compact transport form: JSON, gzip
// compressed and base64 encoded.
func Encode(bundle *grammar.Bundle) ([]byte, error) {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}

	var compressed bytes.Buffer
	zw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress bundle: %w", err)
	}

	out := make([]byte, base64.StdEncoding.EncodedLen(compressed.Len()))
	base64.StdEncoding.Encode(out, compressed.Bytes())
	return out, nil
}
