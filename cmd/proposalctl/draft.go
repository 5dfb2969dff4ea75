package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// loadDraft читает черновик из файла; "-" означает stdin.
// *.json разбирается как JSON, остальное как YAML.
func loadDraft(path string, stdin io.Reader) (entity.ProposalDraft, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return entity.ProposalDraft{}, fmt.Errorf("read draft: %w", err)
	}

	var draft entity.ProposalDraft
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&draft); err != nil {
			return entity.ProposalDraft{}, fmt.Errorf("parse draft json: %w", err)
		}
		return draft, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&draft); err != nil && err != io.EOF {
		return entity.ProposalDraft{}, fmt.Errorf("parse draft yaml: %w", err)
	}
	return draft, nil
}
