package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/prodsys/internal/compiler"
	"github.com/roach88/prodsys/internal/engine"
	"github.com/roach88/prodsys/internal/store"
)

// SessionOptions holds the flags shared by commands that build an engine
// from a vocabulary directory.
type SessionOptions struct {
	*RootOptions
	Database string

	// Sessions overrides the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Sessions engine.SessionGenerator
}

// session is an engine loaded from a vocabulary directory, optionally
// recording its events to a SQLite log.
type session struct {
	engine       *engine.Engine
	store        *store.Store
	recorder     *store.Recorder
	vocabularies int
}

// openSession compiles every vocabulary in dir and loads it into a fresh
// engine. Load failures exit with ExitCommandError; the wrapped
// *compiler.LoadError carries the E-code.
func openSession(ctx context.Context, opts *SessionOptions, dir string, cmd *cobra.Command) (*session, error) {
	loadResult, loadErrors := compiler.LoadVocabularies(dir, compiler.LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, WrapExitError(ExitCommandError, "failed to load vocabularies", loadErrors[0])
	}

	engineOpts := []engine.Option{engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr()))}
	if opts.Sessions != nil {
		engineOpts = append(engineOpts, engine.WithSessionGenerator(opts.Sessions))
	}

	s := &session{vocabularies: len(loadResult.Vocabularies)}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.store = st
		s.recorder = store.NewRecorder(ctx, st)
		engineOpts = append(engineOpts, engine.WithObserver(s.recorder))
	}

	s.engine = engine.New(engineOpts...)
	for _, v := range loadResult.Vocabularies {
		if err := s.engine.LoadVocabulary(v); err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to load vocabulary", err)
		}
	}
	return s, nil
}

// Close reports the first recording error, then closes the database.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	var err error
	if s.recorder != nil && s.recorder.Err() != nil {
		err = WrapExitError(ExitCommandError, "failed to record events", s.recorder.Err())
	}
	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = WrapExitError(ExitCommandError, "failed to close database", closeErr)
	}
	return err
}
