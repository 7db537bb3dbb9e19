package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meenmo/rateedge/alerts"
)

// createAlertRequest is the wire form of a new alert. Enabled is a
// pointer so an omitted field defaults to enabled.
type createAlertRequest struct {
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	Tenor     string  `json:"tenor"`
	Condition string  `json:"condition"`
	Threshold float64 `json:"threshold"`
	Enabled   *bool   `json:"enabled"`
}

func (s *Server) listAlerts(c *gin.Context) {
	list := s.alerts.List(c.Query("enabled") == "true")
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (s *Server) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	created, err := s.alerts.Add(alerts.Alert{
		Name:      req.Name,
		Currency:  req.Currency,
		Tenor:     req.Tenor,
		Condition: req.Condition,
		Threshold: req.Threshold,
		Enabled:   enabled,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

func (s *Server) getAlert(c *gin.Context) {
	a, err := s.alerts.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a})
}

func (s *Server) updateAlert(c *gin.Context) {
	var u alerts.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	a, err := s.alerts.ApplyUpdate(c.Param("id"), u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a})
}

func (s *Server) deleteAlert(c *gin.Context) {
	if err := s.alerts.Remove(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Alert deleted"})
}

func (s *Server) alertHistory(c *gin.Context) {
	h, err := s.alerts.History(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h})
}

func (s *Server) checkAlerts(c *gin.Context) {
	triggers, err := s.alerts.Check(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(triggers), "data": triggers})
}
