package importer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khrees2412/linkfolio/internal/database"
	"github.com/khrees2412/linkfolio/internal/mapper"
	"github.com/khrees2412/linkfolio/pkg/models"
)

// Source yields a profile for a reference, which is either a public
// profile URL/identifier (scraper) or a member identifier (API).
type Source interface {
	FetchProfile(ctx context.Context, ref string) (*models.Profile, error)
	Close()
}

// Repo persists a mapped profile. *database.Repository is the real
// implementation; tests substitute a fake.
type Repo interface {
	ImportProfile(ctx context.Context, user *mapper.UserRecord, projects []mapper.ProjectRecord) (*database.ImportResult, error)
}

// Summary reports what one import run accomplished.
type Summary struct {
	UserID             string
	Name               string
	Email              string
	ProjectsImported   int
	TechnologiesLinked int
	Elapsed            time.Duration
}

// Importer drives the fetch, map, persist pipeline.
type Importer struct {
	Source Source
	Repo   Repo
	Log    *zap.Logger

	// Now is the clock used for mapping; overridable in tests.
	Now func() time.Time
}

// New wires an importer over a source and a repository.
func New(source Source, repo Repo, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{Source: source, Repo: repo, Log: log, Now: time.Now}
}

// Run executes one import. Each stage failure is returned tagged so
// the CLI can report which stage broke; nothing is persisted unless
// every stage succeeds.
func (im *Importer) Run(ctx context.Context, ref, emailOverride string) (*Summary, error) {
	start := im.Now()

	im.Log.Info("fetching profile", zap.String("ref", ref))
	profile, err := im.Source.FetchProfile(ctx, ref)
	if err != nil {
		return nil, err
	}
	im.Log.Info("profile fetched",
		zap.String("name", profile.FullName()),
		zap.Int("positions", len(profile.Positions)),
		zap.Int("skills", len(profile.Skills)))

	user, projects, err := mapper.Map(profile, emailOverride, im.Now().UTC(), im.Log)
	if err != nil {
		return nil, err
	}
	im.Log.Info("profile mapped",
		zap.String("email", user.Email),
		zap.Int("projects", len(projects)))

	result, err := im.Repo.ImportProfile(ctx, user, projects)
	if err != nil {
		return nil, err
	}

	return &Summary{
		UserID:             result.UserID.String(),
		Name:               user.Name,
		Email:              user.Email,
		ProjectsImported:   result.ProjectsImported,
		TechnologiesLinked: result.TechnologiesLinked,
		Elapsed:            im.Now().Sub(start),
	}, nil
}
