package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/emrgen/sweater/internal/cache"
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/graph"
	"github.com/emrgen/sweater/internal/jobs"
	"github.com/emrgen/sweater/internal/service"
	"github.com/emrgen/sweater/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Options configure the optional periodic export of the graph to a file.
type Options struct {
	ExportCron string
	ExportFile string
}

// Server represents the server
type Server struct {
	cfg     *config.Config
	options Options
}

// NewServer creates a new server
func NewServer(cfg *config.Config, options Options) *Server {
	return &Server{
		cfg:     cfg,
		options: options,
	}
}

// Start starts the http server and blocks until it is interrupted.
func (s *Server) Start() error {
	httpPort := ":" + s.cfg.HTTPPort

	db, err := config.GetDb(s.cfg)
	if err != nil {
		return err
	}

	thesisStore := store.NewGormStore(db)
	if err := thesisStore.Migrate(); err != nil {
		return err
	}

	graphCache, err := cache.NewGraphCache(s.cfg)
	if err != nil {
		return err
	}

	exporter, err := graph.NewExporter(thesisStore, graphCache, s.cfg.Export)
	if err != nil {
		return err
	}

	svc := service.NewThesisService(thesisStore, s.cfg.RelationKinds)

	var cronJobs []jobs.CronJob
	if s.options.ExportFile != "" {
		if s.options.ExportCron == "" {
			return fmt.Errorf("export file %s needs an export schedule", s.options.ExportFile)
		}
		cronJobs = append(cronJobs, jobs.NewExportTask(s.options.ExportCron, s.options.ExportFile, exporter))
	}
	executor := jobs.NewTaskExecutor(nil, cronJobs)
	if err := executor.Run(); err != nil {
		return err
	}
	defer executor.Stop()

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: NewHandler(svc, exporter),
	}

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", httpPort)
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting http server: %v", err)
			}
		}
		logrus.Infof("http server stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	err = restServer.Shutdown(context.Background())
	if err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	wg.Wait()

	return nil
}
