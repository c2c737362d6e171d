package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/booking"
	"github.com/CarLinkRent/CarLinkRent/internal/car"
	"github.com/CarLinkRent/CarLinkRent/internal/common/config"
	"github.com/CarLinkRent/CarLinkRent/internal/common/db"
	"github.com/CarLinkRent/CarLinkRent/internal/common/logger"
	"github.com/CarLinkRent/CarLinkRent/internal/common/server"
	"github.com/CarLinkRent/CarLinkRent/internal/common/tracing"
	"github.com/CarLinkRent/CarLinkRent/internal/user"
	"github.com/labstack/echo/v4"
)

var (
	configPath = flag.String("config", "configs/api-server.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化文档库
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoDB, err := db.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, time.Duration(cfg.Mongo.ConnectTimeout)*time.Second)
	cancel()
	if err != nil {
		log.Fatalf("failed to init mongo: %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := db.Close(shutdownCtx); err != nil {
			log.Warnf("failed to close mongo: %v", err)
		}
	}()

	// 组装各 domain
	carRepo := car.NewRepo(mongoDB)
	carSvc := car.NewService(carRepo)
	carHTTP := car.NewHTTPServer(carSvc)

	userRepo := user.NewRepo(mongoDB)
	userHTTP := user.NewHTTPServer(userRepo, cfg.Auth)

	bookingRepo := booking.NewRepo(mongoDB)
	bookingSvc := booking.NewService(bookingRepo, carRepo)
	bookingHTTP := booking.NewHTTPServer(bookingSvc)

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(e *echo.Echo) error {
		carHTTP.RegisterRoutes(e)
		userHTTP.RegisterRoutes(e)
		bookingHTTP.RegisterRoutes(e)
		return nil
	}); err != nil {
		log.Fatalf("api-server exited with error: %v", err)
	}
}
