package daemon

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/batnotify/pkg/config"
	"github.com/charlie0129/batnotify/pkg/power"
	"github.com/charlie0129/batnotify/pkg/types"
	"github.com/charlie0129/batnotify/pkg/version"
)

func setupRoutes(ctx context.Context, m *Monitor, conf config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus(m))
	router.GET("/config", getConfig(conf))
	router.GET("/battery-info", getBatteryInfo)
	router.GET("/shutdown", getShutdown(m))
	router.DELETE("/shutdown", abortShutdown(m))
	router.GET("/events", streamEvents(ctx, m))
	router.GET("/version", getVersion)

	return router
}

func getStatus(m *Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, types.StatusResponse{
			BatteryStatus:    m.Status(),
			PendingShutdowns: m.shutdown.Pending(),
		})
	}
}

func getConfig(conf config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		fc, err := config.NewRawFileConfigFromConfig(conf)
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.IndentedJSON(http.StatusOK, fc)
	}
}

var listBatteries = power.Batteries

func getBatteryInfo(c *gin.Context) {
	batteries, err := listBatteries()
	if err != nil {
		logrus.Errorf("getBatteryInfo failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, batteries)
}

func getShutdown(m *Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, m.shutdown.Pending())
	}
}

func abortShutdown(m *Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := m.shutdown.Cancel()
		logrus.Infof("aborted %d pending shutdown(s)", n)
		c.IndentedJSON(http.StatusOK, types.AbortResponse{Cancelled: n})
	}
}

// streamEvents ends the stream when the client goes away or ctx is done,
// whichever comes first.
func streamEvents(ctx context.Context, m *Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch := m.hub.Subscribe()
		defer m.hub.Unsubscribe(ch)

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Stream(func(_ io.Writer) bool {
			select {
			case ev, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent(ev.Name, string(ev.Data))
				return true
			case <-ctx.Done():
				return false
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
