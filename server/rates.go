package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"

	"github.com/meenmo/rateedge/importer"
	"github.com/meenmo/rateedge/market"
	"github.com/meenmo/rateedge/ratestore"
)

// queryFilter builds a store filter from the request's query string.
func queryFilter(c *gin.Context) (ratestore.Filter, error) {
	f := ratestore.Filter{
		Currency:     c.Query("currency"),
		Tenor:        c.Query("tenor"),
		FloatingRate: c.Query("floating_rate"),
	}
	if v := c.Query("start_date"); v != "" {
		d, err := parseDay(v)
		if err != nil {
			return f, fmt.Errorf("invalid start_date %q, want YYYY-MM-DD", v)
		}
		f.From = d
	}
	if v := c.Query("end_date"); v != "" {
		d, err := parseDay(v)
		if err != nil {
			return f, fmt.Errorf("invalid end_date %q, want YYYY-MM-DD", v)
		}
		f.To = d
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = n
	}
	return f, nil
}

func (s *Server) listRates(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	rates, err := s.store.Query(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(rates), "data": rates})
}

func (s *Server) latestRates(c *gin.Context) {
	currency := c.Param("currency")
	if currency == "" {
		currency = c.Query("currency")
	}
	rates, err := s.latestCurve(c.Request.Context(), currency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(rates), "data": rates})
}

// rateRequest is the wire form of one rate observation. Rate is a
// pointer so an absent field is distinguishable from an explicit zero.
type rateRequest struct {
	Date         string   `json:"date"`
	Currency     string   `json:"currency"`
	Tenor        string   `json:"tenor"`
	Rate         *float64 `json:"rate"`
	FloatingRate string   `json:"floating_rate"`
	Source       string   `json:"source"`
}

func (r rateRequest) toRecord() (ratestore.SwapRate, error) {
	switch {
	case r.Date == "":
		return ratestore.SwapRate{}, errors.New("missing field: date")
	case r.Currency == "":
		return ratestore.SwapRate{}, errors.New("missing field: currency")
	case r.Tenor == "":
		return ratestore.SwapRate{}, errors.New("missing field: tenor")
	case r.Rate == nil:
		return ratestore.SwapRate{}, errors.New("missing field: rate")
	}
	d, err := parseDay(r.Date)
	if err != nil {
		return ratestore.SwapRate{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", r.Date)
	}
	if !market.IsSupported(r.Currency) {
		return ratestore.SwapRate{}, fmt.Errorf("unsupported currency %q", r.Currency)
	}
	return ratestore.SwapRate{
		Date:         d,
		Currency:     r.Currency,
		Tenor:        r.Tenor,
		FloatingRate: r.FloatingRate,
		Rate:         *r.Rate,
		Source:       r.Source,
	}, nil
}

func (s *Server) addRate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	rec, err := req.toRecord()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := s.store.Save(c.Request.Context(), rec); err != nil {
		respondError(c, err)
		return
	}
	s.invalidateLatest(c.Request.Context(), rec.Currency)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Rate added successfully"})
}

func (s *Server) bulkAddRates(c *gin.Context) {
	var reqs []rateRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		respondBadRequest(c, "request body must be an array of rate objects")
		return
	}

	records := make([]ratestore.SwapRate, 0, len(reqs))
	currencies := make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	for i, r := range reqs {
		rec, err := r.toRecord()
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("record %d: %s", i, err))
			return
		}
		records = append(records, rec)
		if !seen[rec.Currency] {
			seen[rec.Currency] = true
			currencies = append(currencies, rec.Currency)
		}
	}

	n, err := s.store.SaveBatch(c.Request.Context(), records)
	if err != nil {
		respondError(c, err)
		return
	}
	s.invalidateLatest(c.Request.Context(), currencies...)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": fmt.Sprintf("%d rates added successfully", n)})
}

func (s *Server) deleteRates(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	n, err := s.store.DeleteByDate(c.Request.Context(), f.Currency, f.From, f.To)
	if err != nil {
		respondError(c, err)
		return
	}
	s.invalidateLatest(c.Request.Context(), f.Currency)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("%d rates deleted", n)})
}

func (s *Server) deleteRatesByDate(c *gin.Context) {
	currency := c.Param("currency")
	d, err := parseDay(c.Param("date"))
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", c.Param("date")))
		return
	}
	n, err := s.store.DeleteByDate(c.Request.Context(), currency, d, d)
	if err != nil {
		respondError(c, err)
		return
	}
	s.invalidateLatest(c.Request.Context(), currency)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("%d rates deleted", n)})
}

func (s *Server) listDates(c *gin.Context) {
	dates, err := s.store.Dates(c.Request.Context(), c.Query("currency"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(out), "dates": out})
}

func (s *Server) listTenors(c *gin.Context) {
	tenors, err := s.store.Tenors(c.Request.Context(), c.Query("currency"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(tenors), "tenors": tenors})
}

// exportRow flattens a stored rate for the CSV download.
type exportRow struct {
	ID           int64   `csv:"id"`
	Date         string  `csv:"date"`
	Currency     string  `csv:"currency"`
	FloatingRate string  `csv:"floating_rate"`
	Tenor        string  `csv:"tenor"`
	Rate         float64 `csv:"rate"`
	CreatedAt    string  `csv:"created_at"`
	UpdatedAt    string  `csv:"updated_at"`
}

func (s *Server) exportRates(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	rates, err := s.store.Query(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]exportRow, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, exportRow{
			ID:           r.ID,
			Date:         r.Date.Format("2006-01-02"),
			Currency:     r.Currency,
			FloatingRate: r.FloatingRate,
			Tenor:        r.Tenor,
			Rate:         r.Rate,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:    r.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="swap_rates_export.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(out))
}

func (s *Server) importRates(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, `multipart field "file" is required`)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	opts := importer.Options{
		Currency: c.PostForm("currency"),
		Source:   c.PostForm("source"),
	}
	if opts.Source == "" {
		opts.Source = fileHeader.Filename
	}

	ctx := c.Request.Context()
	res, err := s.importer.Import(ctx, f, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	if currencies, err := s.store.Currencies(ctx); err == nil {
		s.invalidateLatest(ctx, currencies...)
	}
	c.JSON(http.StatusOK, res)
}
