package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"scriptdesk/internal/app"
	"scriptdesk/internal/config"
	"scriptdesk/internal/database"
	models "scriptdesk/internal/domain/models/library"
	librarySvc "scriptdesk/internal/domain/services/library"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type fixtureFile struct {
	Projects []projectFixture `yaml:"projects"`
}

type projectFixture struct {
	Title       string           `yaml:"title"`
	Description *string          `yaml:"description"`
	Settings    *settingsFixture `yaml:"settings"`
	Folders     []folderFixture  `yaml:"folders"`
	Scripts     []scriptFixture  `yaml:"scripts"` // filed under the default folder
}

type settingsFixture struct {
	DefaultContentType models.ContentType  `yaml:"default_content_type"`
	DefaultStatus      models.ScriptStatus `yaml:"default_status"`
}

type folderFixture struct {
	Name     string          `yaml:"name"`
	Children []folderFixture `yaml:"children"`
	Scripts  []scriptFixture `yaml:"scripts"`
}

type scriptFixture struct {
	Title       string    `yaml:"title"`
	Content     string    `yaml:"content"`
	ContentType *string   `yaml:"content_type"`
	Status      *string   `yaml:"status"`
	Tags        *[]string `yaml:"tags"`
	Duration    *int      `yaml:"duration"`
}

type seeder struct {
	services *app.Services
	userID   string
	folders  int
	scripts  int
}

func main() {
	// Parse command-line flags
	userID := flag.String("user", "seed-user", "Owner user id for the seeded projects")
	fixturesPath := flag.String("fixtures", "", "YAML fixtures file (defaults to the embedded demo library)")
	reset := flag.Bool("reset", false, "Roll back every migration before seeding (fresh start)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *reset {
		log.Fatalf("🚫 BLOCKED: Cannot run --reset in production environment")
	}
	if cfg.StorageBackend != config.StoragePostgres {
		log.Fatalf("Seeding needs STORAGE_BACKEND=%s (got %q)", config.StoragePostgres, cfg.StorageBackend)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	fixtures, err := loadFixtures(*fixturesPath)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	services, err := app.Setup(ctx, cfg, app.Options{SkipCache: true}, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer services.Close()

	if *reset {
		log.Println("🗑️  Rolling back all migrations...")
		if err := database.Reset(ctx, services.Pool, cfg.TablePrefix, logger); err != nil {
			log.Fatalf("Failed to reset schema: %v", err)
		}
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := database.Migrate(ctx, services.Pool, cfg.TablePrefix, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s := &seeder{services: services, userID: *userID}
	for i, p := range fixtures.Projects {
		project, err := s.seedProject(ctx, p)
		if err != nil {
			log.Fatalf("❌ Failed to seed project '%s': %v", p.Title, err)
		}
		log.Printf("✅ Created project %d/%d: %s (ID: %s)", i+1, len(fixtures.Projects), project.Title, project.ID)
	}

	log.Printf("🎉 Seeding complete! %d projects, %d folders, %d scripts", len(fixtures.Projects), s.folders, s.scripts)
}

func loadFixtures(path string) (*fixtureFile, error) {
	data := defaultFixtures
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

func (s *seeder) seedProject(ctx context.Context, p projectFixture) (*models.Project, error) {
	req := &librarySvc.CreateProjectRequest{
		UserID:      s.userID,
		Title:       p.Title,
		Description: p.Description,
	}
	if p.Settings != nil {
		req.Settings = &models.ProjectSettings{
			DefaultContentType: p.Settings.DefaultContentType,
			DefaultStatus:      p.Settings.DefaultStatus,
		}
	}

	project, err := s.services.Projects.CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(p.Scripts) > 0 && len(project.Folders) > 0 {
		if err := s.seedScripts(ctx, project.ID, project.Folders[0].ID, p.Scripts); err != nil {
			return nil, err
		}
	}
	if err := s.seedFolders(ctx, project.ID, nil, p.Folders); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *seeder) seedFolders(ctx context.Context, projectID string, parentID *string, folders []folderFixture) error {
	for _, f := range folders {
		folder, err := s.services.Folders.CreateFolder(ctx, s.userID, &librarySvc.CreateFolderRequest{
			ProjectID: projectID,
			Name:      f.Name,
			ParentID:  parentID,
		})
		if err != nil {
			return fmt.Errorf("folder %q: %w", f.Name, err)
		}
		s.folders++

		if err := s.seedScripts(ctx, projectID, folder.ID, f.Scripts); err != nil {
			return err
		}
		if err := s.seedFolders(ctx, projectID, &folder.ID, f.Children); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) seedScripts(ctx context.Context, projectID, folderID string, scripts []scriptFixture) error {
	for _, sf := range scripts {
		script, err := s.services.Scripts.CreateScript(ctx, &librarySvc.CreateScriptRequest{
			UserID:    s.userID,
			ProjectID: projectID,
			FolderID:  folderID,
			Title:     sf.Title,
			Content:   sf.Content,
			Metadata: &librarySvc.MetadataInput{
				ContentType: sf.ContentType,
				Tags:        sf.Tags,
				Status:      sf.Status,
				Duration:    sf.Duration,
			},
		})
		if err != nil {
			return fmt.Errorf("script %q: %w", sf.Title, err)
		}
		s.scripts++
		log.Printf("   📝 %s (words: %d)", script.Title, script.WordCount)
	}
	return nil
}
