package revdiff

import (
	"github.com/benchwatch/revdiff/internal/core/config"
	"github.com/benchwatch/revdiff/internal/core/diff"
	"github.com/benchwatch/revdiff/internal/core/diffcache"
	"github.com/benchwatch/revdiff/internal/core/githubapi"
	"github.com/benchwatch/revdiff/internal/store/jsonfile"
)

// App is the central entry point for all revdiff operations. Commands
// consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	API    *githubapi.Client
	Store  *jsonfile.CacheStore
	Cache  *diffcache.Cache
	Diffs  *Service
}

// NewApp wires an App from configuration.
func NewApp(cfg *config.Config) *App {
	api := githubapi.New(cfg.GitHub.APIURL, cfg.GitHub.Token)
	store := jsonfile.NewCacheStore(cfg.CachePath())
	cache := diffcache.New(store, cfg.Cache.TTL, nil)

	opts := diff.TwoTreeOptions{
		ContextLines:     cfg.Diff.ContextLines,
		MinFragmentLines: cfg.Diff.MinFragmentLines,
		Ignore:           cfg.Diff.Ignore,
	}

	return &App{
		Config: cfg,
		API:    api,
		Store:  store,
		Cache:  cache,
		Diffs:  NewService(api, cache, opts, nil),
	}
}
