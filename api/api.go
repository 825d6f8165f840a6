package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"propertysim/internal/app"
	"propertysim/internal/domain"
	"propertysim/internal/logger"
	"propertysim/internal/repository"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type ApiHandler struct {
	DealSimulationApp app.DealSimulationApp
	// shared secret for HS256 bearer tokens; empty disables auth
	JwtDecodeToken string
	ReportCurrency string
	Gatherer       prometheus.Gatherer
	Logger         *zap.SugaredLogger
	// closed by cmd.CloseDependencies
	Closers []func() error
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)
	router.Use(m.authMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to propertysim"})
	})

	gatherer := m.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	router.POST("/simulations", m.simulate)
	router.GET("/simulations/:simulationID", m.getSimulation)
	router.GET("/simulations/:simulationID/report", m.getSimulationReport)
	router.POST("/deals/:dealID/simulations", m.simulateDeal)
	router.GET("/deals/:dealID/simulations", m.listDealSimulations)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	code := http.StatusInternalServerError
	switch {
	case domain.IsValidationError(err):
		code = http.StatusBadRequest
	case errors.Is(err, repository.ErrSnapshotNotFound):
		code = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	returnErrorJsonCode(err, c, code)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c.Request.Context())
	if code >= 500 {
		log.Errorw("request failed", "status", code, "error", err.Error())
	} else {
		log.Infow("request rejected", "status", code, "error", err.Error())
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.ValidationError{Field: name, Message: fmt.Sprintf("must be a uuid, got %q", c.Param(name))}
	}
	return id, nil
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	log := m.Logger
	if log == nil {
		log = zap.S()
	}
	log = log.With("method", c.Request.Method, "route", c.FullPath(), "requestID", uuid.NewString())
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

	start := time.Now().UTC()
	c.Next()

	log.Infow("request completed",
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"ip", c.ClientIP(),
	)
}
