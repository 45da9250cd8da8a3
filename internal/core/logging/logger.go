package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns a child of the global logger tagged with the "cmp"
// key, so lines from the diff engine's subsystems (githubapi, twotree,
// diffcache, ...) can be filtered apart in one shared log file.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
