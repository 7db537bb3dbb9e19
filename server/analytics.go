package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// analyticsWindow reads the optional start_date and end_date bounds.
func analyticsWindow(c *gin.Context) (from, to time.Time, err error) {
	if v := c.Query("start_date"); v != "" {
		if from, err = parseDay(v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, want YYYY-MM-DD", v)
		}
	}
	if v := c.Query("end_date"); v != "" {
		if to, err = parseDay(v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q, want YYYY-MM-DD", v)
		}
	}
	return from, to, nil
}

func (s *Server) tenorStats(c *gin.Context) {
	currency, tenor := c.Param("currency"), c.Param("tenor")
	from, to, err := analyticsWindow(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	stats, err := s.analytics.Statistics(ctx, currency, tenor, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	changes, err := s.analytics.Changes(ctx, currency, tenor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"currency": strings.ToUpper(currency),
		"tenor":    strings.ToUpper(tenor),
		"data":     gin.H{"statistics": stats, "changes": changes},
	})
}

func (s *Server) tenorVolatility(c *gin.Context) {
	from, to, err := analyticsWindow(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	window := 0
	if v := c.Query("window"); v != "" {
		window, err = strconv.Atoi(v)
		if err != nil || window < 0 {
			respondBadRequest(c, fmt.Sprintf("invalid window %q", v))
			return
		}
	}

	series, err := s.analytics.Volatility(c.Request.Context(), c.Param("currency"), c.Param("tenor"), window, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": series})
}

func (s *Server) tenorOutliers(c *gin.Context) {
	from, to, err := analyticsWindow(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	threshold := 0.0
	if v := c.Query("threshold"); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil || threshold < 0 {
			respondBadRequest(c, fmt.Sprintf("invalid threshold %q", v))
			return
		}
	}

	rep, err := s.analytics.Outliers(c.Request.Context(), c.Param("currency"), c.Param("tenor"), threshold, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rep})
}

func (s *Server) tenorGaps(c *gin.Context) {
	rep, err := s.analytics.MissingDates(c.Request.Context(), c.Param("currency"), c.Param("tenor"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rep})
}

func (s *Server) tenorSpread(c *gin.Context) {
	tenor1, tenor2 := c.Query("tenor1"), c.Query("tenor2")
	if tenor1 == "" || tenor2 == "" {
		respondBadRequest(c, "tenor1 and tenor2 query parameters are required")
		return
	}
	from, to, err := analyticsWindow(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := s.analytics.Spread(c.Request.Context(), c.Param("currency"), tenor1, tenor2, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (s *Server) tenorCorrelation(c *gin.Context) {
	tenor1, tenor2 := c.Query("tenor1"), c.Query("tenor2")
	if tenor1 == "" || tenor2 == "" {
		respondBadRequest(c, "tenor1 and tenor2 query parameters are required")
		return
	}
	from, to, err := analyticsWindow(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := s.analytics.Correlation(c.Request.Context(), c.Param("currency"), tenor1, tenor2, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
