package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName は gRPC ヘルスチェックで公開するサービス名です。
const ServiceName = "employee_directory"

// Options は Server の構成です。HealthListenAddr が空なら gRPC ヘルスチェックは起動しません。
type Options struct {
	ListenAddr       string
	HealthListenAddr string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
}

// Server は REST API の HTTP サーバーと gRPC ヘルスチェックのライフサイクルを管理します。
type Server struct {
	opts       Options
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	log        logrus.FieldLogger
}

// New は handler を提供する Server を構築します。
func New(opts Options, handler http.Handler, log logrus.FieldLogger, grpcOpts ...grpc.ServerOption) *Server {
	s := &Server{
		opts: opts,
		httpServer: &http.Server{
			Addr:              opts.ListenAddr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
		log: log,
	}

	if opts.HealthListenAddr != "" {
		s.grpcServer = grpc.NewServer(grpcOpts...)
		s.health = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
		reflection.Register(s.grpcServer)
	}
	return s
}

// Run はサーバーを起動し、コンテキストがキャンセルされると順に停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.ListenAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcServer != nil {
		grpcLis, err = net.Listen("tcp", s.opts.HealthListenAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.opts.HealthListenAddr, err)
		}
	}

	return s.serve(ctx, httpLis, grpcLis)
}

func (s *Server) serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.WithField("addr", httpLis.Addr().String()).Info("http server listening")
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

		g.Go(func() error {
			s.log.WithField("addr", grpcLis.Addr().String()).Info("grpc health server listening")
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	if s.health != nil {
		s.health.Shutdown()
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	if err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	s.log.Info("servers stopped")
	return nil
}
