package codec

import (
	"fmt"
	"os"

	"measuremap/internal/fileutil"
	"measuremap/internal/measure"
	"measuremap/internal/successor"
)

const fileMode = 0o644

// ReadFile loads a measure map from path.
func ReadFile(path string) (*measure.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mm, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mm, nil
}

// WriteFile stores mm at path, creating parent directories.
func WriteFile(path string, mm *measure.Map) error {
	if err := fileutil.WriteFileAtomic(path, Encode(mm), fileMode); err != nil {
		return fmt.Errorf("write measure map %s: %w", path, err)
	}
	return nil
}

// ReadCompressedFile loads a derive-or-override file from path.
func ReadCompressedFile(path string) (successor.Compressed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return successor.Compressed{}, err
	}
	c, err := DecodeCompressed(data)
	if err != nil {
		return successor.Compressed{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteCompressedFile stores c at path, creating parent directories.
func WriteCompressedFile(path string, c successor.Compressed) error {
	if err := fileutil.WriteFileAtomic(path, EncodeCompressed(c), fileMode); err != nil {
		return fmt.Errorf("write compressed map %s: %w", path, err)
	}
	return nil
}
