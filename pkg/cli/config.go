package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/adapter"
	"github.com/m-mizutani/pipetrace/pkg/livestate"
	"github.com/m-mizutani/pipetrace/pkg/policy"
	"github.com/m-mizutani/pipetrace/pkg/repository"
	"github.com/m-mizutani/pipetrace/pkg/usecase/trace"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	backendFS  = "fs"
	backendGCS = "gcs"

	liveStateNone      = "none"
	liveStateFile      = "file"
	liveStateFirestore = "firestore"
)

// config holds configuration values
type config struct {
	// Pipeline output
	root       string
	configPath string
	backend    string
	bucket     string
	prefix     string

	// Live state
	liveState     string
	liveStatePath string
	project       string
	database      string
	collection    string

	policyDir string

	logLevel string
	logJSON  bool

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	bigqueryProj   string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "root",
			Aliases:     []string{"r"},
			Usage:       "Pipeline output root directory (fs backend)",
			Value:       ".",
			Sources:     cli.EnvVars("PIPETRACE_ROOT"),
			Destination: &cfg.root,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML file overriding stage directory names",
			Sources:     cli.EnvVars("PIPETRACE_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "Where stage records are stored: fs or gcs",
			Value:       backendFS,
			Sources:     cli.EnvVars("PIPETRACE_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket holding stage records (gcs backend)",
			Sources:     cli.EnvVars("PIPETRACE_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "Object prefix of the pipeline output in the bucket (gcs backend)",
			Sources:     cli.EnvVars("PIPETRACE_PREFIX"),
			Destination: &cfg.prefix,
		},
		&cli.StringFlag{
			Name:        "live-state",
			Usage:       "Source of live suggestion state: none, file or firestore",
			Value:       liveStateFile,
			Sources:     cli.EnvVars("PIPETRACE_LIVE_STATE"),
			Destination: &cfg.liveState,
		},
		&cli.StringFlag{
			Name:        "live-state-path",
			Usage:       "Live state JSON file (default: state.json under root)",
			Sources:     cli.EnvVars("PIPETRACE_LIVE_STATE_PATH"),
			Destination: &cfg.liveStatePath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("PIPETRACE_PROJECT", "GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("PIPETRACE_DATABASE", "FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Firestore collection holding live suggestions",
			Value:       "suggestions",
			Sources:     cli.EnvVars("PIPETRACE_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego integrity rules",
			Sources:     cli.EnvVars("PIPETRACE_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level: debug, info, warn or error",
			Value:       "info",
			Sources:     cli.EnvVars("PIPETRACE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Write logs as JSON",
			Sources:     cli.EnvVars("PIPETRACE_LOG_JSON"),
			Destination: &cfg.logJSON,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("PIPETRACE_GEMINI_PROJECT", "GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("PIPETRACE_GEMINI_LOCATION", "GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model used for judging",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("PIPETRACE_GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// bigqueryFlags returns flags for the export destination
func bigqueryFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-project",
			Usage:       "Google Cloud project ID for BigQuery (default: --project)",
			Sources:     cli.EnvVars("PIPETRACE_BIGQUERY_PROJECT"),
			Destination: &cfg.bigqueryProj,
		},
	}
}

// setupLogger installs the configured logger as default and on ctx
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	var opts []logging.Option
	if cfg.logJSON {
		opts = append(opts, logging.WithJSON())
	}
	logger := logging.New(cfg.logLevel, os.Stderr, opts...)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newSource creates the stage record source for the configured backend
func (cfg *config) newSource(ctx context.Context) (repository.Source, error) {
	switch cfg.backend {
	case backendFS, "":
		if cfg.root == "" {
			return nil, goerr.New("root is required")
		}
		return repository.NewFileSource(cfg.root), nil

	case backendGCS:
		storage, err := cfg.newStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, err
		}
		return repository.NewStorageSource(storage, cfg.prefix), nil

	default:
		return nil, goerr.New("unsupported backend",
			goerr.V("backend", cfg.backend),
			goerr.V("supported", []string{backendFS, backendGCS}))
	}
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context, bucketName string) (adapter.Storage, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	storage, err := adapter.NewStorage(ctx, bucketName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newLayout returns the stage directory layout, read from --config when given
func (cfg *config) newLayout() (repository.Layout, error) {
	if cfg.configPath == "" {
		return repository.DefaultLayout(), nil
	}
	return repository.LoadLayout(cfg.configPath)
}

// newLiveState creates the live state provider. The returned closer is never nil.
func (cfg *config) newLiveState(ctx context.Context) (livestate.Provider, func(), error) {
	noop := func() {}

	switch cfg.liveState {
	case liveStateNone:
		return livestate.NewStatic(), noop, nil

	case liveStateFile, "":
		path := cfg.liveStatePath
		if path == "" {
			path = filepath.Join(cfg.root, "state.json")
		}
		return livestate.NewFile(path), noop, nil

	case liveStateFirestore:
		if cfg.project == "" {
			return nil, noop, goerr.New("project is required for firestore live state")
		}
		fs, err := livestate.NewFirestore(ctx, cfg.project, cfg.database, cfg.collection)
		if err != nil {
			return nil, noop, err
		}
		return fs, func() {
			if err := fs.Close(); err != nil {
				logging.From(ctx).Warn("failed to close firestore client", "error", err)
			}
		}, nil

	default:
		return nil, noop, goerr.New("unsupported live state source",
			goerr.V("live_state", cfg.liveState),
			goerr.V("supported", []string{liveStateNone, liveStateFile, liveStateFirestore}))
	}
}

// newTrace wires stores, live state and integrity policy into the trace use case
func (cfg *config) newTrace(ctx context.Context) (*trace.UseCase, func(), error) {
	src, err := cfg.newSource(ctx)
	if err != nil {
		return nil, nil, err
	}

	layout, err := cfg.newLayout()
	if err != nil {
		return nil, nil, err
	}

	live, closer, err := cfg.newLiveState(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []trace.Option{trace.WithLiveState(live)}
	if cfg.policyDir != "" {
		pol, err := policy.Load(ctx, cfg.policyDir)
		if err != nil {
			closer()
			return nil, nil, err
		}
		opts = append(opts, trace.WithPolicy(pol))
	}

	return trace.New(repository.NewStores(src, layout), opts...), closer, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return gemini, nil
}

// newBigQuery creates a new BigQuery adapter instance
func (cfg *config) newBigQuery(ctx context.Context) (adapter.BigQuery, error) {
	project := cfg.bigqueryProj
	if project == "" {
		project = cfg.project
	}
	if project == "" {
		return nil, goerr.New("bigquery-project or project is required")
	}

	bq, err := adapter.NewBigQuery(ctx, project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create bigquery client")
	}
	return bq, nil
}
