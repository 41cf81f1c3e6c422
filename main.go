// @title EAD Platform API
// @version 1.0
// @description Back-end da plataforma EAD: cursos, matrículas, avaliações e certificados.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/app"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/configwatcher"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		logger.Log.Info("configuration reloaded", zap.String("path", "configs/config.yaml"))
	})

	application.Run()
}
