package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skufu/cardiorisk/internal/align"
	"github.com/Skufu/cardiorisk/internal/assessment"
	"github.com/Skufu/cardiorisk/internal/logger"
	"github.com/Skufu/cardiorisk/internal/store"
	"github.com/Skufu/cardiorisk/internal/treatment"
)

const requestIDHeader = "X-Request-ID"

func setupRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(),
		accessLog(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", app.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/schema", app.schema)
	api.GET("/dataset/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.summary)
	})
	api.POST("/assessments", app.assess)
	api.GET("/assessments", app.recent)
	api.GET("/treatment", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.treatment)
	})
	api.POST("/treatment/plan", app.plan)

	return router
}

func (a *App) ready(c *gin.Context) {
	body := gin.H{"status": "ok", "mode": a.svc.Mode(), "db": "disabled", "cache": "disabled"}
	if a.model != nil {
		body["model"] = a.model.Name + "@" + a.model.Version
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	code := http.StatusOK
	check := func(name string, hc HealthChecker) {
		if err := hc.Ping(ctx); err != nil {
			body[name] = fmt.Sprintf("unhealthy: %v", err)
			body["status"] = "degraded"
			code = http.StatusServiceUnavailable
			return
		}
		body[name] = "ok"
	}
	if a.store != nil {
		check("db", a.store)
	}
	if a.cache != nil {
		check("cache", a.cache)
	}
	c.JSON(code, body)
}

type columnView struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Vocabulary []string `json:"vocabulary,omitempty"`
	Default    any      `json:"default"`
}

func (a *App) schema(c *gin.Context) {
	s := a.svc.Schema()
	if s == nil {
		respondError(c, align.ErrNoSchema)
		return
	}
	cols := make([]columnView, 0, len(s.Columns))
	for _, col := range s.Columns {
		v := columnView{Name: col.Name, Kind: col.Kind.String()}
		if col.Kind == align.Categorical {
			v.Vocabulary = col.Vocabulary()
			v.Default = col.FallbackValue()
		} else {
			v.Default = col.Impute
		}
		cols = append(cols, v)
	}
	c.JSON(http.StatusOK, gin.H{"target": s.Target, "columns": cols})
}

func (a *App) assess(c *gin.Context) {
	rec, err := bindRecord(c)
	if err != nil {
		badBody(c, err)
		return
	}

	res, err := a.svc.Assess(c.Request.Context(), rec)
	if err != nil {
		respondError(c, err)
		return
	}
	if debug, _ := strconv.ParseBool(c.Query("debug")); !debug {
		res.Debug = nil
	}
	c.JSON(http.StatusOK, res)
}

func (a *App) recent(c *gin.Context) {
	limit := store.DefaultLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	items, err := a.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []store.Assessment{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (a *App) plan(c *gin.Context) {
	rec, err := bindRecord(c)
	if err != nil {
		badBody(c, err)
		return
	}

	rec = assessment.WithBMI(rec)

	var buf bytes.Buffer
	if err := treatment.Plan(&buf, rec, a.treatment, time.Now()); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="treatment_plan.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

var errBodyTooLarge = errors.New("request body too large")

func badBody(c *gin.Context, err error) {
	code := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) {
		code = http.StatusRequestEntityTooLarge
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// bindRecord decodes a JSON object body, keeping numbers as json.Number.
func bindRecord(c *gin.Context) (align.Record, error) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errors.New("invalid JSON body")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("body must be a JSON object")
	}
	return align.Record(obj), nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, align.ErrNoSchema):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.C(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// requestID propagates X-Request-ID, minting a ULID when absent, and
// stores it on the request context for logger.C.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.C(c.Request.Context())
		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("bytes", c.Writer.Size()).
			Msg("request done")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
