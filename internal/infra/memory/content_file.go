package memory

import (
	"fmt"
	"os"

	"arquiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type contentFile struct {
	Contents []domain.Content `yaml:"contents"`
}

// ParseContents decodes a YAML document with a top-level `contents` list, keyed by content ID.
func ParseContents(data []byte) (map[string]domain.Content, error) {
	var file contentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	contents := make(map[string]domain.Content, len(file.Contents))
	for _, content := range file.Contents {
		if content.ID == "" {
			return nil, fmt.Errorf("%w: content without id", domain.ErrInvalidContent)
		}
		if _, dup := contents[content.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate content id %q", domain.ErrInvalidContent, content.ID)
		}
		contents[content.ID] = content
	}
	return contents, nil
}

// ReadContentFile loads every content set from a YAML file.
func ReadContentFile(path string) (map[string]domain.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseContents(data)
}

// NewFileContentLoader serves the content sets of a YAML file.
func NewFileContentLoader(path string) (*StaticContentLoader, error) {
	contents, err := ReadContentFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticContentLoader(contents), nil
}
