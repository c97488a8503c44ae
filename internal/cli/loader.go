package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/vrorigins/internal/command"
	"github.com/roach88/vrorigins/internal/config"
	"github.com/roach88/vrorigins/internal/manifest"
	"github.com/roach88/vrorigins/internal/openvr/simvr"
	"github.com/roach88/vrorigins/internal/store"
	"github.com/roach88/vrorigins/internal/vrstate"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeConfig          = "E002" // Config file invalid
	ErrCodeManifest        = "E003" // Action manifest invalid
	ErrCodeFixture         = "E004" // Runtime fixture invalid
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeStore           = "E006" // History store error
	ErrCodeConnect         = "E007" // Runtime session bring-up failed
	ErrCodeWriteFailed     = "E008" // File write error
	ErrCodeNoResult        = "E010" // Resolution produced no result
	ErrCodeNoHistory       = "E011" // History store not configured or empty
	ErrCodeBindingsChanged = "E012" // Replay found different bindings
	ErrCodeTestFailed      = "E013" // Scenario failed
)

// LoadError is a failure to bring a session up, tagged with an error code.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loadConfig reads the configuration file, or the defaults when none is
// given, and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "config file not found: " + opts.ConfigPath}
		}
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeConfig, Message: "failed to load config", Err: err}
		}
		cfg = loaded
	}

	if opts.Manifest != "" {
		cfg.Manifest = opts.Manifest
	}
	if opts.Fixture != "" {
		cfg.RuntimeFixture = opts.Fixture
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Policy != "" {
		cfg.MetadataPolicy = opts.Policy
	}
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: "invalid configuration", Err: err}
	}
	return cfg, nil
}

// openStore opens the configured history store. Returns nil when history
// is disabled.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, int64, error) {
	if cfg.Database == "" {
		return nil, 0, nil
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeStore, Message: "failed to open history store", Err: err}
	}
	seq, err := st.MaxSeq(ctx)
	if err != nil {
		st.Close()
		return nil, 0, &LoadError{Code: ErrCodeStore, Message: "failed to read history", Err: err}
	}
	return st, seq, nil
}

// session is a connected runtime session built from the configuration.
type session struct {
	cfg     *config.Config
	svc     *command.Service
	runtime *simvr.Runtime
	store   *store.Store
	logger  *slog.Logger
}

// openSession loads the configuration, the action manifest and the
// runtime fixture, opens the history store and connects.
func openSession(ctx context.Context, opts *RootOptions, logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := opts.newLogger(logOut, cfg.LogLevel)

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "action manifest not found: " + cfg.Manifest}
		}
		return nil, &LoadError{Code: ErrCodeManifest, Message: "invalid action manifest", Err: err}
	}

	rig, err := simvr.LoadRig(cfg.RuntimeFixture)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "runtime fixture not found: " + cfg.RuntimeFixture}
		}
		return nil, &LoadError{Code: ErrCodeFixture, Message: "invalid runtime fixture", Err: err}
	}

	st, seq, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svcOpts := []command.Option{
		command.WithLogger(logger),
		command.WithPolicy(cfg.Policy()),
		command.WithClock(command.NewClockAt(seq)),
		command.WithAppKey(cfg.AppKey),
	}
	if st != nil {
		svcOpts = append(svcOpts, command.WithHistory(st))
	}
	svc := command.New(vrstate.New(vrstate.WithLogger(logger)), svcOpts...)

	rt := simvr.New(rig)
	err = svc.Connect(ctx, rt, m, command.ConnectOptions{
		ManifestPath: cfg.Manifest,
		ActiveSets:   cfg.ActiveSets,
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, &LoadError{Code: ErrCodeConnect, Message: "failed to connect to runtime", Err: err}
	}

	logger.Debug("session opened",
		"manifest", cfg.Manifest,
		"fixture", cfg.RuntimeFixture,
		"database", cfg.Database,
		"policy", cfg.MetadataPolicy,
	)
	return &session{cfg: cfg, svc: svc, runtime: rt, store: st, logger: logger}, nil
}

// Close disconnects and closes the history store.
func (s *session) Close(ctx context.Context) error {
	err := s.svc.Disconnect(ctx)
	if s.store != nil {
		err = errors.Join(err, s.store.Close())
	}
	return err
}

// failLoad reports a bring-up error through the formatter with exit code 2.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, loadErr.Err)
		}
		return f.Fail(ExitCommandError, loadErr.Code, msg, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
