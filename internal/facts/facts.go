// Package facts reads structural-facts documents: per-part lists of the
// barline, meter and timing facts a score parser reports for every measure.
// A document is turned into a measure map by the repeat-graph builder.
package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"measuremap/internal/measure"
	"measuremap/internal/repeatgraph"
	"measuremap/internal/textutil"
)

// Extension is the file suffix of facts documents.
const Extension = ".facts.json"

// Document holds the facts of every part of one piece.
type Document struct {
	Piece string
	Parts [][]repeatgraph.Fact
}

type documentJSON struct {
	Piece string       `json:"piece"`
	Parts [][]factJSON `json:"parts"`
}

type factJSON struct {
	StartRepeat   bool     `json:"start_repeat"`
	EndRepeat     bool     `json:"end_repeat"`
	LeftBarline   string   `json:"left_barline"`
	QStamp        *float64 `json:"qstamp"`
	Number        int      `json:"number"`
	Volta         int      `json:"volta"`
	TimeSignature string   `json:"time_signature"`
	NominalLength float64  `json:"nominal_length"`
	ActualLength  float64  `json:"actual_length"`
}

func (f factJSON) fact() repeatgraph.Fact {
	return repeatgraph.Fact{
		StartRepeat:   f.StartRepeat,
		EndRepeat:     f.EndRepeat,
		LeftBarline:   repeatgraph.ParseBarline(f.LeftBarline),
		QStamp:        f.QStamp,
		Number:        f.Number,
		Volta:         f.Volta,
		TimeSignature: f.TimeSignature,
		NominalLength: f.NominalLength,
		ActualLength:  f.ActualLength,
	}
}

// Load decodes a facts document. A bare array of facts is read as a
// single-part document.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc documentJSON
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var part []factJSON
		if err := json.Unmarshal(trimmed, &part); err != nil {
			return nil, measure.Wrap(measure.ErrFormat, "load facts", "decode part", err)
		}
		doc.Parts = [][]factJSON{part}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, measure.Wrap(measure.ErrFormat, "load facts", "decode document", err)
	}
	if len(doc.Parts) == 0 {
		return nil, measure.Wrap(measure.ErrStructural, "load facts", "document has no parts", nil)
	}

	out := &Document{Piece: doc.Piece, Parts: make([][]repeatgraph.Fact, len(doc.Parts))}
	for i, part := range doc.Parts {
		facts := make([]repeatgraph.Fact, len(part))
		for j, f := range part {
			facts[j] = f.fact()
		}
		out.Parts[i] = facts
	}
	return out, nil
}

// LoadFile reads the facts document at path. The piece name defaults to the
// file name.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Piece == "" {
		doc.Piece = textutil.PieceName(path)
	}
	return doc, nil
}

// Build derives the measure map of the document. With checkParts set every
// part must produce the same map as part 0.
func (d *Document) Build(checkParts bool) (*measure.Map, error) {
	mm, err := repeatgraph.BuildParts(d.Parts, checkParts)
	if err != nil {
		if d.Piece != "" {
			return nil, fmt.Errorf("%s: %w", d.Piece, err)
		}
		return nil, err
	}
	return mm, nil
}

// ConvertFile loads the facts document at path and builds its map.
func ConvertFile(path string, checkParts bool) (*measure.Map, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Build(checkParts)
}
