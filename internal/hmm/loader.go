package hmm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a model file syntax.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatTOML  Format = "toml"
	FormatTMHMM Format = "tmhmm"
)

// FormatFromPath picks the syntax by extension: .yaml/.yml, .json, .toml;
// anything else is read as a TMHMM text model (e.g. TMHMM2.0.model).
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatTMHMM
	}
}

// ParseFormat accepts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON, FormatTOML, FormatTMHMM:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported model format: %q", s)
	}
}

// LoadFile reads and compiles a model file. The format follows the extension.
func LoadFile(path string, opts Options) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = path
	}
	return Load(f, FormatFromPath(path), opts)
}

// Load decodes a model in the given format and compiles it.
func Load(r io.Reader, format Format, opts Options) (*Model, error) {
	spec, err := DecodeSpec(r, format)
	if err != nil {
		var mfe *ModelFormatError
		if errors.As(err, &mfe) && mfe.Source == "" {
			mfe.Source = opts.Source
		}
		return nil, err
	}
	return Compile(spec, opts)
}

// DecodeSpec parses a serialized model into its logical schema without
// validating it. Unknown keys are rejected.
func DecodeSpec(r io.Reader, format Format) (Spec, error) {
	var spec Spec
	b, err := io.ReadAll(r)
	if err != nil {
		return spec, err
	}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return spec, malformed(format, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return spec, malformed(format, err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return spec, malformed(format, err)
		}
	case FormatTMHMM:
		return ParseTMHMM(bytes.NewReader(b))
	default:
		return spec, fmt.Errorf("unsupported model format: %q", format)
	}
	return spec, nil
}

func malformed(format Format, err error) error {
	if errors.Is(err, io.EOF) {
		return &ModelFormatError{Where: string(format), Reason: "empty model description"}
	}
	return &ModelFormatError{Where: string(format), Reason: err.Error()}
}
