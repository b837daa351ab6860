package industry

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed multiples.yaml
var defaultTable []byte

func referenceError(format string, args ...any) error {
	return eris.Wrapf(ErrReferenceData, format, args...)
}

// Parse decodes a YAML (or JSON) reference document into a Table.
func Parse(data []byte) (*Table, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, referenceError("parse multiples table: %v", err)
	}
	if len(spec.Multiples) == 0 && len(spec.SectorMultipliers) == 0 {
		return nil, referenceError("multiples table is empty")
	}
	return NewTable(spec)
}

// LoadFile reads the reference table at path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, referenceError("read multiples table %s: %v", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", path)
	}
	return t, nil
}

// Load returns the table at path, or the embedded default table when path
// is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Parse(defaultTable)
	}
	return LoadFile(path)
}
