package auth

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// setGlobalOption sets section.key = value in a git config file, preserving
// everything else in it.
func setGlobalOption(path, section, key, value string) error {
	cfg := format.New()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := format.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	if cfg.Section(section).Option(key) == value {
		return nil
	}
	cfg.Section(section).SetOption(key, value)

	var buf bytes.Buffer
	if err := format.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// globalOption reads section.key from a git config file.
func globalOption(path, section, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	cfg := format.New()
	if err := format.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return "", err
	}
	return cfg.Section(section).Option(key), nil
}
