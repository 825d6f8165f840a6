package api

import (
	"propertysim/internal/app"
	"propertysim/internal/domain"
	"propertysim/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (m ApiHandler) simulateDeal(c *gin.Context) {
	dealID, err := parseUUIDParam(c, "dealID")
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	m.runSimulation(c, &dealID)
}

func (m ApiHandler) simulate(c *gin.Context) {
	m.runSimulation(c, nil)
}

func (m ApiHandler) runSimulation(c *gin.Context, dealID *uuid.UUID) {
	ctx := c.Request.Context()
	profile, endProfile := domain.NewProfile()
	ctx = domain.NewCtxWithProfile(ctx, profile)
	defer endProfile()

	req, err := domain.DecodeSimulationRequest(c.Request.Body)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := m.DealSimulationApp.Simulate(ctx, app.SimulateInput{
		DealID:      dealID,
		Request:     *req,
		RequestedBy: requestedBy(c),
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	endProfile()
	if b, err := profile.ToJsonBytes(); err == nil {
		logger.FromContext(ctx).Debugw("simulation profile", "simulationID", result.ID, "profile", string(b))
	}

	c.JSON(200, result)
}
