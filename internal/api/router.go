package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointHealth   = "/health"
	EndPointReady    = "/ready"
	EndPointMetrics  = "/metrics"
	EndPointChatAsk  = "/chat/ask"
	EndPointChatInfo = "/chat/info"
)

type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig, chat *ChatHandler, health *HealthHandler, log Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(log), CORS(cfg.AllowedOrigins))

	router.GET(EndPointHealth, health.Health)
	router.GET(EndPointReady, health.Ready)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	v1 := router.Group(cfg.APIPrefix)
	{
		v1.POST(EndPointChatAsk, chat.Ask)
		v1.GET(EndPointChatInfo, chat.Info)
	}

	return router
}
