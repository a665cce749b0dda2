// Package seed loads folder/resource fixtures from YAML and replays them
// through the services, so seeded data obeys the same rules as API traffic.
package seed

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"devspace/internal/domain/models"
	"devspace/internal/domain/services"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture is the root of a seed file
type Fixture struct {
	Folders   []FolderFixture   `yaml:"folders"`
	Resources []ResourceFixture `yaml:"resources"` // root level
}

// FolderFixture describes a folder with its nested content
type FolderFixture struct {
	Name      string            `yaml:"name"`
	Folders   []FolderFixture   `yaml:"folders"`
	Resources []ResourceFixture `yaml:"resources"`
}

// ResourceFixture describes one resource
type ResourceFixture struct {
	Name         string               `yaml:"name"`
	Description  *string              `yaml:"description"`
	Kind         models.ResourceKind  `yaml:"kind"`
	CodeLanguage *models.CodeLanguage `yaml:"codeLanguage"`
	Value        *string              `yaml:"value"`
	Favorite     bool                 `yaml:"favorite"`
}

// Result counts what a seed run created
type Result struct {
	Folders   int
	Resources int
}

// Parse decodes a fixture document. Unknown keys are rejected and an empty
// document yields an empty fixture.
func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fixture, nil
}

// Default returns the embedded starter fixture
func Default() (*Fixture, error) {
	data, err := fixtureFiles.ReadFile("fixtures/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read default fixture: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a fixture from disk
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Seeder replays fixtures through the folder and resource services
type Seeder struct {
	folders   services.FolderService
	resources services.ResourceService
	logger    *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(folders services.FolderService, resources services.ResourceService, logger *slog.Logger) *Seeder {
	return &Seeder{
		folders:   folders,
		resources: resources,
		logger:    logger,
	}
}

// Apply creates every folder and resource of the fixture, parents before
// children. It stops at the first failure; whatever was created before it
// stays in place.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (*Result, error) {
	result := &Result{}

	for _, f := range fixture.Folders {
		if err := s.createFolder(ctx, f, nil, result); err != nil {
			return result, err
		}
	}
	for _, r := range fixture.Resources {
		if err := s.createResource(ctx, r, nil, result); err != nil {
			return result, err
		}
	}

	s.logger.Info("seed applied", "folders", result.Folders, "resources", result.Resources)

	return result, nil
}

func (s *Seeder) createFolder(ctx context.Context, f FolderFixture, parentID *string, result *Result) error {
	folder, err := s.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		Name:     f.Name,
		ParentID: parentID,
	})
	if err != nil {
		return fmt.Errorf("folder %q: %w", f.Name, err)
	}
	result.Folders++
	s.logger.Debug("seeded folder", "id", folder.ID, "name", folder.Name)

	for _, child := range f.Folders {
		if err := s.createFolder(ctx, child, &folder.ID, result); err != nil {
			return err
		}
	}
	for _, r := range f.Resources {
		if err := s.createResource(ctx, r, &folder.ID, result); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createResource(ctx context.Context, r ResourceFixture, folderID *string, result *Result) error {
	resource, err := s.resources.CreateResource(ctx, &services.CreateResourceRequest{
		FolderID:     folderID,
		Name:         r.Name,
		Description:  r.Description,
		Kind:         r.Kind,
		CodeLanguage: r.CodeLanguage,
		Value:        r.Value,
	})
	if err != nil {
		return fmt.Errorf("resource %q: %w", r.Name, err)
	}

	if r.Favorite {
		if _, err := s.resources.ToggleFavorite(ctx, resource.ID); err != nil {
			return fmt.Errorf("resource %q: %w", r.Name, err)
		}
	}

	result.Resources++
	s.logger.Debug("seeded resource", "id", resource.ID, "name", resource.Name)
	return nil
}
