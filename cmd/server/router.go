package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/hepatostage/internal/catalog"
	"github.com/Skufu/hepatostage/internal/logging"
	"github.com/Skufu/hepatostage/internal/model"
	"github.com/Skufu/hepatostage/internal/prediction"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type Predictor interface {
	Predict(raw map[string]any) (*prediction.Result, error)
}

type ModelStatus interface {
	Status() model.Status
}

type handlers struct {
	db        HealthChecker
	predictor Predictor
	models    ModelStatus
	log       logrus.FieldLogger
}

type routerOptions struct {
	MaxBodyBytes int64
	RateLimitRPS float64
	RateBurst    int
}

func setupRouter(h *handlers, opts routerOptions) *gin.Engine {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	// Flags must stay json.Number so 1 and 1.0 remain distinguishable.
	binding.EnableDecoderUseNumber = true

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		logging.Requests(h.log),
		limitBodySize(opts.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			MaxAge:       12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", h.ready)

	limited := rateLimit(opts.RateLimitRPS, opts.RateBurst)

	router.GET("/", h.formPage)
	router.POST("/predict", limited, h.formPredict)

	api := router.Group("/api")
	api.GET("/features", h.features)
	api.POST("/predict", limited, h.apiPredict)

	return router
}

func (h *handlers) ready(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "db": "disabled"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body["db"] = "ok"
		if err := h.db.Ping(ctx); err != nil {
			body["db"] = fmt.Sprintf("unhealthy: %v", err)
			status = http.StatusServiceUnavailable
		}
	}

	modelStatus := h.models.Status()
	body["model"] = modelStatus.String()
	if modelStatus == model.StatusFailed {
		status = http.StatusServiceUnavailable
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

func (h *handlers) features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields":       catalog.RequiredFields(),
		"ranges":       catalog.FeatureRanges(),
		"descriptions": catalog.FeatureDescriptions(),
	})
}

func (h *handlers) apiPredict(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	// The decoder stops after the first value; reject anything trailing it.
	if body, ok := c.Get(gin.BodyBytesKey); ok && !json.Valid(body.([]byte)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	res, err := h.predictor.Predict(raw)
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) formPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", newPageView(nil))
}

func (h *handlers) formPredict(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		view := newPageView(nil)
		view.Error = "The form could not be read."
		c.HTML(http.StatusBadRequest, "index.tmpl", view)
		return
	}

	view := newPageView(c.Request.PostForm)
	res, err := h.predictor.Predict(rawFromForm(c.Request.PostForm))
	if err != nil {
		status, body := errorResponse(err)
		view.Error = fmt.Sprint(body["message"])
		c.HTML(status, "index.tmpl", view)
		return
	}

	view.Result = newResultView(res)
	c.HTML(http.StatusOK, "index.tmpl", view)
}

// errorResponse maps an adapter failure to a status code and JSON body.
func errorResponse(err error) (int, gin.H) {
	var perr *prediction.Error
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "unexpected error"}
	}

	switch perr.Kind {
	case prediction.KindValidation:
		body := gin.H{"error": "validation_failed", "message": perr.Message}
		if perr.Field != "" {
			body["field"] = perr.Field
		}
		return http.StatusUnprocessableEntity, body
	case prediction.KindModelUnavailable:
		return http.StatusServiceUnavailable, gin.H{"error": "model_unavailable", "message": perr.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "prediction_failed", "message": perr.Error()}
	}
}
