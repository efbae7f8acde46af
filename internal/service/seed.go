package service

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ArticleSeedFile is the YAML layout read by the seed-articles command.
type ArticleSeedFile struct {
	Articles []CreateArticleInput `yaml:"articles"`
}

// DecodeArticleSeed reads an article seed document. Unknown keys are errors.
func DecodeArticleSeed(r io.Reader) ([]CreateArticleInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f ArticleSeedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode article seed: %w", err)
	}
	return f.Articles, nil
}
