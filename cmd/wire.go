package cmd

import (
	"fmt"
	"time"

	accountsfile "github.com/bnema/major-rewards-cli/internal/adapters/accounts/file"
	"github.com/bnema/major-rewards-cli/internal/adapters/major"
	statusadapter "github.com/bnema/major-rewards-cli/internal/adapters/render/status"
	tokensfile "github.com/bnema/major-rewards-cli/internal/adapters/tokens/file"
	"github.com/bnema/major-rewards-cli/internal/application"
	"github.com/bnema/major-rewards-cli/internal/config"
	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/logging"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type app struct {
	cfg            config.Config
	configFile     string
	runID          string
	logger         *log.Logger
	source         *accountsfile.Source
	store          *tokensfile.Store
	tokens         *application.TokenService
	orchestrator   *application.Orchestrator
	queries        *application.AccountQueries
	reportRenderer func(domain.RunReport, statusadapter.RenderOptions) (string, error)
	listRenderer   func([]application.AccountSummary) (string, error)
	now            func() time.Time
}

func wireApp(cmd *cobra.Command, opts rootOptions) (*app, error) {
	cfg, used, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile, EnvFile: opts.envFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	runID := uuid.NewString()
	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level, Timestamps: cfg.Log.Timestamps})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}
	logger = logger.With(logging.KeyRun, runID[:8])
	if used != "" {
		logger.Debug("config loaded", "file", used)
	}

	source := accountsfile.NewSource(cfg.Accounts.Path)

	store, err := tokensfile.NewStore(cfg.Tokens.Path)
	if err != nil {
		return nil, fmt.Errorf("wire token store: %w", err)
	}

	client, err := major.NewClient(major.Config{
		BaseURL:         cfg.API.BaseURL,
		SquadID:         cfg.API.SquadID,
		TaskTitlesURL:   cfg.API.TaskTitlesURL,
		DurovPayloadURL: cfg.API.DurovPayloadURL,
		UserAgent:       cfg.API.UserAgent,
		RequestTimeout:  cfg.API.Timeout,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	clock := ports.SystemClock{}
	gateway := application.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxGatewayAttempts,
		Backoff:     cfg.Retry.GatewayBackoff,
	}

	acquirer := application.NewTokenAcquirer(client, clock, application.AcquirerConfig{
		Pacing:  cfg.Pacing.Auth,
		Gateway: gateway,
	}, logger)
	tokens := application.NewTokenService(store, acquirer, client, client, clock, application.TokenServiceConfig{
		RefreshPacing: cfg.Pacing.Refresh,
		ProbePacing:   cfg.Pacing.Probe,
		Gateway:       gateway,
	}, logger)
	executor := application.NewExecutor(clock, tokens, application.ExecutorConfig{
		Gateway:        gateway,
		CooldownMargin: cfg.Retry.CooldownMargin,
	}, logger)

	rewardsCfg := application.DefaultRewardsConfig()
	rewardsCfg.ActionPacing = cfg.Pacing.Action
	rewardsCfg.VisitPacing = cfg.Pacing.Visit
	rewards := application.NewRewards(client, client, executor, clock, rewardsCfg, logger)

	return &app{
		cfg:            cfg,
		configFile:     used,
		runID:          runID,
		logger:         logger,
		source:         source,
		store:          store,
		tokens:         tokens,
		orchestrator:   application.NewOrchestrator(rewards.Actions(), tokens, logger),
		queries:        application.NewAccountQueries(source, store),
		reportRenderer: statusadapter.RenderReport,
		listRenderer:   statusadapter.RenderAccounts,
		now:            time.Now,
	}, nil
}
