package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xlab/closer"

	"mini-vox/internal/config"
	"mini-vox/internal/content"
	"mini-vox/internal/logging"
	"mini-vox/internal/metrics"
	"mini-vox/internal/profiling"
)

var log = logging.New("voxview")

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath  = flag.String("config", "", "config file (defaults to $MINIVOX_CONFIG)")
		blocksPath  = flag.String("blocks", "", "block definitions file, built-ins when empty")
		texturesDir = flag.String("textures", "", "directory of <texture>.png tiles")
		headless    = flag.Int("headless", 0, "render N frames without a window and exit")
		metricsAddr = flag.String("metrics", "", "prometheus listen address, overrides the config")
		lightCache  = flag.String("lightcache", "", "file caching the computed lightmaps between runs")
	)
	flag.Parse()

	if _, err := config.Load(*configPath); err != nil && !errors.Is(err, config.ErrNoConfig) {
		closer.Fatalln(err)
	}
	if level, err := logging.ParseLevel(config.GetLogLevel()); err != nil {
		log.Warn("%v, keeping the default level", err)
	} else {
		logging.SetLevel(level)
	}

	idx := content.Default()
	if *blocksPath != "" {
		var err error
		if idx, err = content.LoadFile(*blocksPath); err != nil {
			closer.Fatalln(err)
		}
	}
	log.Info("%d block definitions", idx.Count())

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	m := metrics.NewRender(reg)
	profiling.SetObserver(m.ObserveSection)

	addr := config.GetMetricsAddr()
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	if addr != "" {
		srv := serveMetrics(addr, reg)
		closer.Bind(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		})
	}

	opts := options{
		idx:         idx,
		metrics:     m,
		texturesDir: *texturesDir,
		lightCache:  *lightCache,
	}
	var err error
	if *headless > 0 {
		err = runHeadless(opts, *headless)
	} else {
		err = runWindow(opts)
	}
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Close()
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	srv := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		log.Info("serving metrics on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server: %v", err)
		}
	}()
	return srv
}
