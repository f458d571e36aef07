// Package app wires configuration into the HTTP router shared by the server
// and Lambda entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	goredis "github.com/redis/go-redis/v9"

	"training-planner/handler"
	"training-planner/internal/config"
	"training-planner/internal/integrations/openai"
	"training-planner/internal/integrations/paramstore"
	"training-planner/internal/projector"
	"training-planner/internal/store"
	"training-planner/internal/usecase"
)

// App is the assembled service.
type App struct {
	Router  http.Handler
	closers []func() error
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// Build constructs every component. AWS configuration is loaded only when a
// component needs it.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{}
	lazy := &lazyAWS{}

	tokens, err := tokenSource(ctx, cfg.Model, lazy)
	if err != nil {
		return nil, err
	}
	if !cfg.Model.HasCredential() {
		log.Warn("no model credential configured; upstream calls will fail", "endpoint", cfg.Model.Endpoint)
	}

	llm, err := openai.NewClient(tokens, cfg.Model.Name,
		openai.WithBaseURL(cfg.Model.Endpoint),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Model.Timeout}),
		openai.WithSampling(openai.Sampling{
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
			MaxTokens:   cfg.Model.MaxTokens,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("app: openai client: %w", err)
	}

	doc, err := a.documentStore(ctx, cfg.Document, lazy)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := seed(ctx, doc, cfg.Document.Seed, log); err != nil {
		_ = a.Close()
		return nil, err
	}

	proj, err := projector.New(doc, log)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: projector: %w", err)
	}
	svc, err := usecase.NewPlanService(llm, proj, cfg.MaxMessageLength, log)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: plan service: %w", err)
	}
	h, err := handler.NewHandler(svc, handler.ModelInfo{
		Endpoint: cfg.Model.Endpoint,
		Model:    cfg.Model.Name,
		HasToken: cfg.Model.HasCredential(),
	}, log)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: handler: %w", err)
	}

	// Request timeout leaves room for the upstream call and the document write.
	a.Router = handler.NewRouter(h, handler.RouterConfig{
		StaticDir:      cfg.StaticDir,
		RequestTimeout: cfg.Model.Timeout + requestSlack,
	})
	return a, nil
}

const requestSlack = 10 * time.Second

func tokenSource(ctx context.Context, m config.Model, lazy *lazyAWS) (openai.TokenSource, error) {
	if m.Token != "" || m.ParamPrefix == "" {
		return openai.StaticToken(m.Token), nil
	}
	awsCfg, err := lazy.load(ctx)
	if err != nil {
		return nil, err
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: paramstore: %w", err)
	}
	tokens, err := openai.NewParamToken(ssmClient, m.TokenParameter())
	if err != nil {
		return nil, fmt.Errorf("app: token source: %w", err)
	}
	return tokens, nil
}

func (a *App) documentStore(ctx context.Context, d config.Document, lazy *lazyAWS) (store.Document, error) {
	switch d.Backend {
	case config.BackendDynamoDB:
		awsCfg, err := lazy.load(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), d.Table, d.Key)
	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: d.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("app: redis ping %s: %w", d.RedisAddr, err)
		}
		return store.NewRedisStore(rdb, d.Key)
	default:
		return store.NewFileStore(d.Path)
	}
}

func seed(ctx context.Context, doc store.Document, path string, log *slog.Logger) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("app: read seed %s: %w", path, err)
	}
	wrote, err := store.Seed(ctx, doc, b)
	if err != nil {
		return err
	}
	if wrote {
		log.Info("seeded training plan document", "seed", path)
	}
	return nil
}

// lazyAWS loads the default AWS configuration at most once.
type lazyAWS struct {
	cfg *aws.Config
}

func (l *lazyAWS) load(ctx context.Context) (aws.Config, error) {
	if l.cfg != nil {
		return *l.cfg, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("app: load AWS config: %w", err)
	}
	l.cfg = &cfg
	return cfg, nil
}
