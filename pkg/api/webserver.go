package api

import (
	"log"
	"net/http"
	"time"

	"github.com/Ragna1204/Background-extraction-and-object-detection/pkg/events"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

//Session is the slice of a running detection session the HTTP surface needs
type Session interface {
	BackgroundJPEG() ([]byte, error)
	FPS() float64
}

//SetRouter builds the monitoring API over a live detection session. Handlers
//only read from the recorder and session; the detection loop keeps running
//independently of any HTTP traffic.
func SetRouter(rec *events.Recorder, session Session) *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/events/recent", func(ctx *gin.Context) {
		window := viper.GetDuration("events.recent_window")
		if raw := ctx.Query("window"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				ctx.Status(http.StatusNotAcceptable) //malformed url parameter
				return
			}
			window = parsed
		}

		ctx.JSON(http.StatusOK, rec.RecentEvents(window))
	})

	apiRoutes.GET("/stats", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"fps":   session.FPS(),
			"stats": rec.Statistics(),
		})
	})

	apiRoutes.POST("/export/json", func(ctx *gin.Context) {
		path, err := rec.ExportJSON(ctx.Query("path"))
		if err != nil {
			log.Printf("api/export/json: Error, got '%v'", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"path": path})
	})

	apiRoutes.POST("/export/csv", func(ctx *gin.Context) {
		path := ctx.Query("path")
		if path == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		if err := rec.ExportCSV(path, ctx.Query("append") == "true"); err != nil {
			log.Printf("api/export/csv: Error, got '%v'", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"path": path})
	})

	apiRoutes.GET("/background", func(ctx *gin.Context) {
		data, err := session.BackgroundJPEG()
		if err != nil {
			ctx.Status(http.StatusNotFound)
			return
		}
		ctx.Data(http.StatusOK, "image/jpeg", data)
	})

	return r
}
