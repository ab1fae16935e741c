package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"reflect"
	"runtime"
	"syscall"
	"time"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/caster/featureflag"
	casterhttp "github.com/aukilabs/caster/http"
	"github.com/aukilabs/caster/models"
	"github.com/aukilabs/caster/smoketest"
	cwebsocket "github.com/aukilabs/caster/websocket"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The caster version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "caster_info",
		Help:        "Caster information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"CASTER_ADDR"                  help:"Listening address for client connections."`
	AdminAddr          string        `cli:""        env:"CASTER_ADMIN_ADDR"            help:"Admin listening address."`
	PublicEndpoint     string        `cli:""        env:"CASTER_PUBLIC_ENDPOINT"       help:"The public endpoint where this caster server is reachable."`
	AccessToken        string        `cli:""        env:"CASTER_ACCESS_TOKEN"          help:"The bearer token required from clients. Empty disables authentication."`
	LogLevel           string        `cli:""        env:"CASTER_LOG_LEVEL"             help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"CASTER_LOG_INDENT"            help:"Indent logs."`
	Threads            int           `cli:""        env:"CASTER_THREADS"               help:"The number of workers casting rays. Zero uses one worker per CPU."`
	MaxRayCount        int           `cli:",hidden" env:"CASTER_MAX_RAY_COUNT"         help:"The maximum number of rays in a fan."`
	MaxShapes          int           `cli:",hidden" env:"CASTER_MAX_SHAPES"            help:"The maximum number of shapes in a scene."`
	ClientIdleTimeout  time.Duration `cli:",hidden" env:"CASTER_CLIENT_IDLE_TIMEOUT"   help:"Time until an idle client will be disconnected"`
	LogSummaryInterval time.Duration `cli:",hidden" env:"CASTER_LOG_SUMMARY_INTERVAL"  help:"The duration between each log summary by connection."`
	Events             eventsConfig  `cli:",hidden" env:"-"                            help:"Event pusher configuration."`
	FeatureFlags       []string      `cli:",hidden" env:"CASTER_FEATURE_FLAGS"         help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                            help:"Show version."`
	Help               bool          `cli:""        env:"-"                            help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"CASTER_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"CASTER_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"CASTER_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"CASTER_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:               ":4100",
		AdminAddr:          ":18191",
		PublicEndpoint:     "http://localhost:4100",
		LogLevel:           logs.InfoLevel.String(),
		MaxRayCount:        4096,
		MaxShapes:          10000,
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts caster server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "caster",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	featureFlags := featureflag.New(conf.FeatureFlags)
	warnUnknownFeatureFlags(featureFlags)

	pool := caster.NewPool(conf.Threads)
	engine := &models.Engine{
		Pool:         pool,
		FeatureFlags: featureFlags,
		MaxRayCount:  conf.MaxRayCount,
		MaxShapes:    conf.MaxShapes,
	}

	var readiness smoketest.Readiness
	smokeTestOptions := smoketest.Options{
		Caster:    engine,
		Readiness: &readiness,
	}
	smoketest.RunWithOptions(ctx, smokeTestOptions)

	auth := casterhttp.TokenVerifier{AccessToken: conf.AccessToken}

	var service http.ServeMux
	service.Handle("/health", casterhttp.HandleWithCORS(http.HandlerFunc(casterhttp.HandleHealthCheck)))
	service.Handle("/ready", casterhttp.HandleWithCORS(casterhttp.HandleReadyCheck(readiness.Ready)))
	service.Handle("/version", casterhttp.HandleWithCORS(casterhttp.HandleVersion(version)))
	service.Handle("/cast", casterhttp.HandleWithCORS(auth.Handler(casterhttp.HandleCast(engine))))
	service.Handle("/intersect", casterhttp.HandleWithCORS(auth.Handler(casterhttp.HandleIntersect(engine))))
	service.Handle("/smoke-test", auth.Handler(smoketest.HandleSmokeTest(ctx, smokeTestOptions)))

	service.Handle("/", websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			if err := auth.Handshake(c, r); err != nil {
				return err
			}
			return cwebsocket.VerifyEncoding(c, r)
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var h cwebsocket.Handler = &cwebsocket.CastHandler{
				Caster:            engine,
				ClientIdleTimeout: conf.ClientIdleTimeout,
			}
			h = cwebsocket.HandlerWithLogs(h, conf.LogSummaryInterval)
			h = cwebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
			defer h.Close()

			cwebsocket.Handle(ctx, conn, h)
		},
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", casterhttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))
	admin.HandleFunc("/ready", casterhttp.HandleReadyCheck(readiness.Ready))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		WithTag("threads", pool.Threads()).
		WithTag("cpus", runtime.NumCPU()).
		WithTag("feature_flags", conf.FeatureFlags).
		Info("starting caster server")

	casterhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			casterhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func validateConfig(conf config) error {
	if _, err := url.ParseRequestURI(conf.PublicEndpoint); err != nil {
		return errors.New("invalid public endpoint").Wrap(err)
	}

	if conf.Threads < 0 {
		return errors.New("threads can't be negative").
			WithTag("threads", conf.Threads)
	}

	if conf.MaxRayCount <= 0 {
		return errors.New("max ray count must be positive").
			WithTag("max_ray_count", conf.MaxRayCount)
	}

	if conf.MaxShapes <= 0 {
		return errors.New("max shapes must be positive").
			WithTag("max_shapes", conf.MaxShapes)
	}

	if conf.LogSummaryInterval <= 0 {
		return errors.New("log summary interval must be positive").
			WithTag("log_summary_interval", conf.LogSummaryInterval)
	}

	return nil
}

func warnUnknownFeatureFlags(flags featureflag.FeatureFlag) {
	known := make(map[featureflag.Flag]struct{})
	for _, f := range featureflag.Known() {
		known[f] = struct{}{}
	}

	for f := range flags {
		if _, ok := known[f]; !ok {
			logs.Warn(errors.New("unknown feature flag").WithTag("flag", f))
		}
	}
}
