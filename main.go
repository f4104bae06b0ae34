package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PingHub/global"
	"PingHub/logger"
	"PingHub/middleware"
	midsec "PingHub/middleware/security"
	"PingHub/service/hub"
	"PingHub/service/hub/handlers"
	"PingHub/tools/ids"
	"PingHub/tools/safe"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := global.Load()
	ids.SetNodeID(cfg.NodeId)

	srv := hub.NewServer(cfg, logger.Log)
	handlers.RegisterAll(srv)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", middleware.Origin(cfg.AllowedOrigins), srv.HandleWS)
	r.GET("/healthz", srv.HandleHealth)

	if cfg.JWTSecret != "" {
		api := r.Group("/api", midsec.Middleware(midsec.DefaultOptions([]byte(cfg.JWTSecret))))
		api.GET("/stats", srv.HandleStats)
		api.POST("/push", srv.HandlePush)

		if cfg.DevTokenEndpoint {
			// 开发期模拟身份服务：生产由外部身份系统签发
			r.POST("/api/token", issueToken(cfg))
		}
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	safe.SafeGo(logger.Log, func() {
		logger.Infof("listening on :%d", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
			os.Exit(1)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Infof("%s received, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	srv.Close()
	logger.Sync()
}
