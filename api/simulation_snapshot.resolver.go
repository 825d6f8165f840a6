package api

import (
	"propertysim/internal/domain"
	"propertysim/internal/report"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type listSimulationsResponse struct {
	DealID      uuid.UUID            `json:"dealID"`
	Simulations []simulationListItem `json:"simulations"`
}

type simulationListItem struct {
	SimulationID   uuid.UUID `json:"simulationID"`
	RunAt          string    `json:"runAt"`
	Iterations     int       `json:"iterations"`
	Mode           string    `json:"mode"`
	MedianNpv      float64   `json:"medianNpv"`
	MedianIrr      *float64  `json:"medianIrr"`
	EquityRequired float64   `json:"equityRequired"`
	Decision       string    `json:"decision"`
}

func (m ApiHandler) getSimulation(c *gin.Context) {
	simulationID, err := parseUUIDParam(c, "simulationID")
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := m.DealSimulationApp.GetSnapshot(c.Request.Context(), simulationID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, result)
}

func (m ApiHandler) getSimulationReport(c *gin.Context) {
	simulationID, err := parseUUIDParam(c, "simulationID")
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := m.DealSimulationApp.GetSnapshot(c.Request.Context(), simulationID)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	currency := c.DefaultQuery("currency", m.ReportCurrency)
	html, err := report.NewFormatter(currency).HTML(*result)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.Data(200, "text/html; charset=utf-8", []byte(html))
}

func (m ApiHandler) listDealSimulations(c *gin.Context) {
	dealID, err := parseUUIDParam(c, "dealID")
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 0 {
			returnErrorJson(domain.ValidationError{Field: "limit", Message: "must be a non-negative integer"}, c)
			return
		}
	}

	results, err := m.DealSimulationApp.ListSnapshots(c.Request.Context(), dealID, limit)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := listSimulationsResponse{
		DealID:      dealID,
		Simulations: []simulationListItem{},
	}
	for _, r := range results {
		var medianIrr *float64
		if r.Irr != nil {
			medianIrr = &r.Irr.Median
		}
		out.Simulations = append(out.Simulations, simulationListItem{
			SimulationID:   r.ID,
			RunAt:          r.RunAt.Format("2006-01-02T15:04:05Z07:00"),
			Iterations:     r.Iterations,
			Mode:           string(r.Mode),
			MedianNpv:      r.Npv.Median,
			MedianIrr:      medianIrr,
			EquityRequired: r.EquityRequired,
			Decision:       string(r.Decision),
		})
	}

	c.JSON(200, out)
}
