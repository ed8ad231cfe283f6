package serverconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	driverKey = "driver"
	typeKey   = "type"
)

// document mirrors the on-disk layout before device options are split out.
// The firmware keys are accepted so existing server configs parse, but the
// VMM loads the bootrom itself and nothing in the spec refers to it.
type document struct {
	Bootrom        string                    `toml:"bootrom" yaml:"bootrom"`
	BootromVersion string                    `toml:"bootrom_version" yaml:"bootrom_version"`
	Chipset        map[string]any            `toml:"chipset" yaml:"chipset"`
	Dev            map[string]map[string]any `toml:"dev" yaml:"dev"`
	BlockDev       map[string]map[string]any `toml:"block_dev" yaml:"block_dev"`
	PciBridge      []PciBridge               `toml:"pci_bridge" yaml:"pci_bridge"`
}

// Load reads a configuration file, choosing the parser by extension
// (.toml, .yaml or .yml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseTOML parses a TOML configuration document.
func ParseTOML(data []byte) (*Config, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return doc.toConfig()
}

// ParseYAML parses a YAML configuration document using the same layout as
// the TOML form.
func ParseYAML(data []byte) (*Config, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc.toConfig()
}

func (d document) toConfig() (*Config, error) {
	cfg := &Config{
		Chipset:    Chipset{Options: Options(d.Chipset)},
		Devices:    make(map[string]Device, len(d.Dev)),
		BlockDevs:  make(map[string]BlockDevice, len(d.BlockDev)),
		PciBridges: d.PciBridge,
	}

	for name, raw := range d.Dev {
		driver, opts, err := splitSelector(raw, driverKey)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		cfg.Devices[name] = Device{Driver: driver, Options: opts}
	}

	for name, raw := range d.BlockDev {
		bdType, opts, err := splitSelector(raw, typeKey)
		if err != nil {
			return nil, fmt.Errorf("block device %s: %w", name, err)
		}
		cfg.BlockDevs[name] = BlockDevice{Type: bdType, Options: opts}
	}

	return cfg, nil
}

// splitSelector removes the string-valued selector key (driver or type)
// from a raw table and returns it alongside the remaining options.
func splitSelector(raw map[string]any, key string) (string, Options, error) {
	opts := make(Options, len(raw))
	for k, v := range raw {
		if k != key {
			opts[k] = v
		}
	}

	v, ok := raw[key]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrMissingOption, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, key, v)
	}
	return s, opts, nil
}
