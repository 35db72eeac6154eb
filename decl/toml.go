package decl

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// ParseTOML decodes a declaration snapshot from TOML. Unknown keys are
// rejected so fixtures fail loudly when the model changes.
func ParseTOML(data []byte) (Decl, error) {
	var d Decl
	meta, err := toml.Decode(string(data), &d)
	if err != nil {
		return Decl{}, fmt.Errorf("decode declaration: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Decl{}, fmt.Errorf("decode declaration: unknown key %q", undecoded[0].String())
	}
	return d, nil
}

// ReadTOML decodes a declaration snapshot from a reader.
func ReadTOML(r io.Reader) (Decl, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Decl{}, fmt.Errorf("read declaration: %w", err)
	}
	return ParseTOML(data)
}

// EncodeTOML renders the declaration as TOML.
func EncodeTOML(w io.Writer, d Decl) error {
	if err := toml.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("encode declaration: %w", err)
	}
	return nil
}
