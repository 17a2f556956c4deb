package api

import (
	"context"
	"factorrisk/internal/app"
	"factorrisk/internal/logger"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	RiskReportHandler app.RiskReportHandler
}

func (m ApiHandler) StartApi(port int) error {
	router := m.Router()
	return router.Run(fmt.Sprintf(":%d", port))
}

func (m ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to factorrisk"})
	})
	router.POST("/riskDecomposition", m.riskDecomposition)

	return router
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Error(err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// logRequestMiddleware tags each request with an id and a logger, and
// records timing and status on the way out.
func logRequestMiddleware(ctx *gin.Context) {
	requestID := uuid.New()
	log := logger.New().With("requestID", requestID.String())

	reqCtx := context.WithValue(ctx.Request.Context(), logger.ContextKey, log)
	ctx.Request = ctx.Request.WithContext(reqCtx)

	start := time.Now().UTC()
	ctx.Next()

	log.Infow("handled request",
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"statusCode", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
