package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meenmo/rateedge/report"
)

func (s *Server) marketReport(c *gin.Context) {
	var tenors []string
	if v := c.Query("tenors"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				tenors = append(tenors, t)
			}
		}
	}

	rep, err := s.reports.MarketReport(c.Request.Context(), c.Param("currency"), tenors)
	if err != nil {
		respondError(c, err)
		return
	}

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rep})
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, rep); err != nil {
			respondError(c, err)
			return
		}
		name := fmt.Sprintf("%s_market_report.csv", strings.ToLower(rep.Currency))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	default:
		respondBadRequest(c, fmt.Sprintf("unsupported format %q, want json or csv", format))
	}
}
