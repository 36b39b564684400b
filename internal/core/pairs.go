package core

import (
	"encoding/json"
	"fmt"
)

// PairsSchemaVersion is the schema version written into pairs documents.
const PairsSchemaVersion = 1

// PairsSource describes where a pairs document came from.
type PairsSource struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

// PairsDocument is the JSON projection of a core document, the artifact
// engines and the batch runner exchange on disk ("pairs.json").
type PairsDocument struct {
	SchemaVersion int            `json:"schema_version"`
	Core          CoreDocument   `json:"core"`
	Source        *PairsSource   `json:"source,omitempty"`
	Options       map[string]any `json:"options,omitempty"`
}

// NewPairsDocument wraps a core document in the pairs envelope.
func NewPairsDocument(doc CoreDocument, source *PairsSource, options map[string]any) PairsDocument {
	return PairsDocument{
		SchemaVersion: PairsSchemaVersion,
		Core:          doc,
		Source:        source,
		Options:       options,
	}
}

// DecodePairsDocument parses a pairs.json artifact. The embedded core
// document is re-canonicalized so that engine emission order never
// affects comparisons.
func DecodePairsDocument(data []byte) (PairsDocument, error) {
	var pd PairsDocument
	if err := json.Unmarshal(data, &pd); err != nil {
		return PairsDocument{}, fmt.Errorf("decode pairs document: %w", err)
	}
	pd.Core = pd.Core.Canonicalize()
	return pd, nil
}

// DecodeAnyDocument accepts either a pairs document or a bare core
// document and returns the core either way.
func DecodeAnyDocument(data []byte) (CoreDocument, error) {
	var probe struct {
		Core *CoreDocument `json:"core"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return CoreDocument{}, fmt.Errorf("decode document: %w", err)
	}
	if probe.Core != nil {
		return probe.Core.Canonicalize(), nil
	}
	return DecodeCoreDocument(data)
}

// DecodeCoreDocument parses a bare core JSON artifact (a frozen
// *.core.json file) and re-canonicalizes it.
func DecodeCoreDocument(data []byte) (CoreDocument, error) {
	var doc CoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return CoreDocument{}, fmt.Errorf("decode core document: %w", err)
	}
	return doc.Canonicalize(), nil
}

// EncodeCanonical renders the document as canonical JSON with a
// trailing newline, the on-disk form of frozen core artifacts.
func (d CoreDocument) EncodeCanonical() ([]byte, error) {
	out, err := MarshalCanonical(d)
	if err != nil {
		return nil, fmt.Errorf("encode core document: %w", err)
	}
	return append(out, '\n'), nil
}

// EncodeCanonical renders the pairs document as canonical JSON with a
// trailing newline.
func (p PairsDocument) EncodeCanonical() ([]byte, error) {
	out, err := MarshalCanonical(p)
	if err != nil {
		return nil, fmt.Errorf("encode pairs document: %w", err)
	}
	return append(out, '\n'), nil
}
