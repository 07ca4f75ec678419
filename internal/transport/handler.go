package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-deforest-monitor/internal/config"
	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/internal/logger"
	"go-deforest-monitor/internal/service"
	"go-deforest-monitor/pkg/models"
)

// NewHandler builds the HTTP facade. The handlers only translate between
// HTTP and the pipeline library; all numeric semantics live below the
// service boundary.
func NewHandler(svc service.AnalysisService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxRequestBodySize))

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.GET("/satellite/status", processorStatus(svc))
	api.POST("/satellite/process", processScene(svc, cfg))
	api.POST("/satellite/batch-process", batchProcess(svc, cfg))
	api.GET("/analytics", analytics(svc))
	api.GET("/export-data/:format", exportData(svc))

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func processorStatus(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Status())
	}
}

func processScene(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := svc.AnalyzeSource(ctx, req.Source)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"source": req.Source,
				"ip":     c.ClientIP(),
			}).Error("Scene analysis failed")
			respondError(c, apperrors.GetStatusCode(err), "scene analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"source":                   req.Source,
			"deforestation_percentage": result.DeforestationPercentage,
			"confidence":               result.Confidence,
			"processing_time_ms":       time.Since(startTime).Milliseconds(),
		}).Info("Scene analysis request completed")

		c.JSON(http.StatusOK, result)
	}
}

func batchProcess(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		// Batch deadlines are governed by the pipeline's own batch timeout,
		// not the per-request timeout
		report, err := svc.ProcessDirectory(c.Request.Context(), req.Directory)
		if err != nil {
			logger.WithError(err).WithField("directory", req.Directory).Error("Batch processing failed")
			respondError(c, apperrors.GetStatusCode(err), "batch processing failed", err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

func analytics(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Stats())
	}
}

func exportData(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := c.Param("format")
		data, contentType, err := svc.Export(format)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "export failed", err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=deforestation_export."+format)
		c.Data(http.StatusOK, contentType, data)
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, status int, message string, err error) {
	resp := models.ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(status, resp)
}
