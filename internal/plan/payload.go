package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned when a save request names neither the
// structured nor the html mode.
var ErrUnknownMode = errors.New("unknown plan mode")

// ErrInvalidPayload is returned when a save request is not well-formed JSON
// or its structure has fields of the wrong shape.
var ErrInvalidPayload = errors.New("invalid plan payload")

// Mode tags how a plan payload was authored.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeHTML       Mode = "html"
)

// Payload is what a plan save carries: either a Structured edit or Raw HTML
// from the expert editor. The two cases never share fields.
type Payload interface {
	Mode() Mode
	isPayload()
}

// Structured is a plan edited field by field.
type Structured struct {
	Structure Structure
}

// Raw is a plan edited as markup. It is stored verbatim.
type Raw struct {
	HTML string
}

func (Structured) Mode() Mode { return ModeStructured }
func (Raw) Mode() Mode        { return ModeHTML }
func (Structured) isPayload() {}
func (Raw) isPayload()        {}

type payloadWire struct {
	Mode      string          `json:"mode"`
	Structure json.RawMessage `json:"structure,omitempty"`
	HTML      *string         `json:"html,omitempty"`
}

// DecodePayload reads {"mode":"structured","structure":{...}} or
// {"mode":"html","html":"..."}.
func DecodePayload(data []byte) (Payload, error) {
	var w payloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return w.payload()
}

func (w payloadWire) payload() (Payload, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(w.Mode))) {
	case ModeStructured:
		s := Empty()
		if len(w.Structure) > 0 && string(w.Structure) != "null" {
			if err := json.Unmarshal(w.Structure, &s); err != nil {
				return nil, fmt.Errorf("%w: structure: %w", ErrInvalidPayload, err)
			}
		}
		return Structured{Structure: s}, nil
	case ModeHTML:
		var raw string
		if w.HTML != nil {
			raw = *w.HTML
		}
		return Raw{HTML: raw}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, w.Mode)
	}
}

// EncodePayload is the inverse of DecodePayload.
func EncodePayload(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case Structured:
		s, err := json.Marshal(v.Structure)
		if err != nil {
			return nil, err
		}
		return json.Marshal(payloadWire{Mode: string(ModeStructured), Structure: s})
	case Raw:
		h := v.HTML
		return json.Marshal(payloadWire{Mode: string(ModeHTML), HTML: &h})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMode, p)
	}
}

// Resolve turns a payload into the HTML to store and the structure kept as
// a backup. Structured payloads are normalized and rendered. Raw payloads
// keep their HTML byte for byte; the backup is a best-effort parse of it.
func Resolve(p Payload) (string, Structure, error) {
	switch v := p.(type) {
	case Structured:
		s := v.Structure.Clone()
		s.Normalize()
		return Render(s), s, nil
	case Raw:
		return v.HTML, Parse(v.HTML), nil
	default:
		return "", Structure{}, fmt.Errorf("%w: %T", ErrUnknownMode, p)
	}
}
