package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/LockboxHQ/lockboxd/internal/core/application"
	"github.com/LockboxHQ/lockboxd/internal/interface/rest/handlers"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Config struct {
	Port uint32
}

func (c Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("missing http port")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

type service struct {
	cfg    Config
	server *http.Server
}

func NewService(cfg Config, appSvc *application.Service) (*service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	h := handlers.NewHandler(appSvc)

	v1 := router.Group("/v1")
	v1.GET("/info", h.GetInfo)
	v1.GET("/locks/:id", h.GetLock)
	v1.GET("/relayers/:identity", h.IsRelayer)

	authed := v1.Group("", identityRequired())
	authed.POST("/swaps", h.InitiateSwap)
	authed.POST("/locks/:id/withdraw", h.Withdraw)
	authed.POST("/locks/:id/refund", h.Refund)
	authed.POST("/completions", h.CompleteSwap)
	authed.POST("/crosschain/calls", h.ExecuteCrossChainCall)
	authed.POST("/relayers/:identity", h.AddRelayer)
	authed.DELETE("/relayers/:identity", h.RemoveRelayer)

	server := &http.Server{
		Addr:    cfg.address(),
		Handler: router,
	}

	return &service{cfg, server}, nil
}

func (s *service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server exited")
		}
	}()
	log.Infof("started listening at %s", s.cfg.address())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// nolint:all
	s.server.Shutdown(ctx)
	log.Info("stopped http server")
}
