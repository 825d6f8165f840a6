package cmd

import (
	"database/sql"
	"fmt"
	"propertysim/api"
	"propertysim/internal/app"
	"propertysim/internal/logger"
	"propertysim/internal/metrics"
	"propertysim/internal/repository"
	l2_service "propertysim/internal/service/l2"
	l3_service "propertysim/internal/service/l3"
	"propertysim/internal/util"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

func CloseDependencies(handler *api.ApiHandler) {
	for _, closer := range handler.Closers {
		if err := closer(); err != nil {
			handler.Logger.Errorw("failed to close dependency", "error", err.Error())
		}
	}
	_ = handler.Logger.Sync()
}

// NewDecisionRule picks the expression rule when the config supplies
// one, otherwise the threshold rule.
func NewDecisionRule(cfg util.DecisionConfig) (l2_service.DecisionRule, error) {
	if cfg.BuyExpression != "" || cfg.ReviewExpression != "" {
		rule, err := l2_service.NewExpressionDecisionRule(cfg.BuyExpression, cfg.ReviewExpression)
		if err != nil {
			return nil, fmt.Errorf("invalid decision expression: %w", err)
		}
		return rule, nil
	}
	return l2_service.NewThresholdDecisionRule(l2_service.DecisionThresholds{
		BuyMinMedianNpv:       cfg.BuyMinMedianNpv,
		CatastrophicLossRatio: cfg.CatastrophicLossRatio,
		ReviewBandRatio:       cfg.ReviewBandRatio,
	}), nil
}

// NewSimulationService builds the engine alone, with no storage or
// transport, so the CLI can run without a database.
func NewSimulationService(cfg util.EngineConfig) (l3_service.SimulationService, error) {
	decisionRule, err := NewDecisionRule(cfg.Decision)
	if err != nil {
		return nil, err
	}
	return l3_service.NewSimulationService(
		l2_service.NewAggregationService(cfg.Simulation.HistogramBuckets),
		decisionRule,
		l3_service.SimulationServiceConfig{
			MaxIterations: cfg.Simulation.MaxIterations,
			Workers:       cfg.Simulation.Workers,
		},
	), nil
}

func InitializeDependencies(engineConfigPath string) (*api.ApiHandler, error) {
	util.LoadEnv()
	log := logger.New()

	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	engineConfig, err := util.LoadEngineConfig(engineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}

	dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	simulationService, err := NewSimulationService(*engineConfig)
	if err != nil {
		return nil, err
	}

	snapshotRepository := repository.NewSimulationSnapshotRepository(dbConn)
	eventRepository := repository.NewSimulationEventRepository(secrets.Kafka.Brokers, secrets.Kafka.Topic)

	dealSimulationApp := app.NewDealSimulationApp(
		simulationService,
		snapshotRepository,
		eventRepository,
		m,
		engineConfig.Simulation.DefaultIterations,
	)

	log.Infow("dependencies initialized",
		"dbHost", secrets.Db.Host,
		"kafkaEnabled", len(secrets.Kafka.Brokers) > 0 && secrets.Kafka.Topic != "",
		"maxIterations", engineConfig.Simulation.MaxIterations,
	)

	return &api.ApiHandler{
		DealSimulationApp: dealSimulationApp,
		JwtDecodeToken:    secrets.Jwt,
		ReportCurrency:    engineConfig.Report.Currency,
		Gatherer:          prometheus.DefaultGatherer,
		Logger:            log,
		Closers: []func() error{
			eventRepository.Close,
			dbConn.Close,
		},
	}, nil
}
