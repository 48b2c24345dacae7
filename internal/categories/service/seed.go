package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"phonebook_backend/internal/categories/repository"
	"phonebook_backend/internal/categories/transport"
	"phonebook_backend/platform/sanitize"
)

// DefaultSeed returns the categories installed on a fresh phone book.
func DefaultSeed() transport.SeedFile {
	return transport.SeedFile{Categories: []transport.SeedCategory{
		{Name: "Pelanggan VIP"},
		{Name: "Pelanggan VIP 2"},
		{Name: "Pelanggan Regular"},
		{Name: "Prospek"},
		{Name: "Lead"},
	}}
}

// ParseSeedFile decodes a YAML seed document. Unknown keys are rejected.
func ParseSeedFile(r io.Reader) (transport.SeedFile, error) {
	var file transport.SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return transport.SeedFile{}, fmt.Errorf("seed file is empty")
		}
		return transport.SeedFile{}, fmt.Errorf("decode seed file: %w", err)
	}
	if len(file.Categories) == 0 {
		return transport.SeedFile{}, fmt.Errorf("seed file has no categories")
	}
	return file, nil
}

// Seed inserts every category of file whose name is not taken yet.
func (s *Service) Seed(ctx context.Context, file transport.SeedFile) (transport.SeedResult, error) {
	result := transport.SeedResult{Created: []string{}, Skipped: []string{}}
	for _, entry := range file.Categories {
		name := sanitize.Name(entry.Name)
		if name == "" {
			continue
		}
		c, created, err := s.repo.EnsureByName(ctx, repository.CreateParams{
			Name:        name,
			Description: sanitize.TextPtr(entry.Description),
		})
		if err != nil {
			return result, fmt.Errorf("seed category %q: %w", name, err)
		}
		if created {
			result.Created = append(result.Created, c.Name)
		} else {
			result.Skipped = append(result.Skipped, c.Name)
		}
	}

	s.log.Info("categories seeded", "created", len(result.Created), "skipped", len(result.Skipped))
	return result, nil
}
