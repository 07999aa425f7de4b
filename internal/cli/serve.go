package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/metrics"
	"github.com/toyz/descres/internal/processor"
	"github.com/toyz/descres/internal/utils"
)

// Server serves a resolved snapshot read-only. The snapshot is resolved
// again whenever its file changes.
type Server struct {
	path        string
	cfg         config.Options
	lang        language.Tag
	collector   *metrics.Collector
	diagnostics *utils.DiagnosticSystem
	cache       *utils.Cache[string, *Resolution]
	engine      *gin.Engine
}

// NewServer creates an inspection server for the snapshot at path
func NewServer(path string, cfg config.Options, lang language.Tag, diagnostics *utils.DiagnosticSystem) *Server {
	s := &Server{
		path:        path,
		cfg:         cfg,
		lang:        lang,
		collector:   metrics.NewCollector(metrics.DefaultNamespace),
		diagnostics: diagnostics,
		cache:       utils.NewCache[string, *Resolution](),
		engine:      gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(s.collector.Handler()))

	api := s.engine.Group("/", s.resolution)
	api.GET("/bundle", s.getBundle)
	api.GET("/components", s.getComponents)
	api.GET("/components/:name", s.getComponent)
	api.GET("/interceptors", s.getInterceptors)
	api.GET("/bindings", s.getBindings)
	api.GET("/findings", s.getFindings)
	api.GET("/diff", s.getDiff)
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Current returns the resolution of the snapshot as it is on disk
func (s *Server) Current() (*Resolution, error) {
	res, fresh, err := s.cache.Load(s.path, s.path, func() (*Resolution, error) {
		return Resolve(s.path, s.cfg,
			processor.WithLogger(s.diagnostics),
			processor.WithRecorder(s.collector))
	})
	if err != nil {
		return nil, err
	}
	if fresh {
		s.diagnostics.Success("Resolved %s (pass %s, %d findings)", s.path, res.Result.PassID, res.Result.Findings.Count())
	}
	return res, nil
}

const resolutionKey = "resolution"

// resolution attaches the current resolution to the request
func (s *Server) resolution(c *gin.Context) {
	res, err := s.Current()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Set(resolutionKey, res)
	c.Next()
}

func current(c *gin.Context) *Resolution {
	return c.MustGet(resolutionKey).(*Resolution)
}

func (s *Server) getBundle(c *gin.Context) {
	c.JSON(http.StatusOK, newBundleView(current(c)))
}

func (s *Server) getComponents(c *gin.Context) {
	res := current(c)
	views := make([]componentView, 0, len(res.Bundle.Components()))
	for _, d := range res.Bundle.Components() {
		views = append(views, newComponentView(d))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getComponent(c *gin.Context) {
	name := c.Param("name")
	d, ok := current(c).Bundle.ComponentByName(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "component " + name + " not found"})
		return
	}
	c.JSON(http.StatusOK, newComponentView(d))
}

func (s *Server) getInterceptors(c *gin.Context) {
	res := current(c)
	views := make([]interceptorView, 0, len(res.Bundle.Interceptors()))
	for _, i := range res.Bundle.Interceptors() {
		views = append(views, newInterceptorView(i))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getBindings(c *gin.Context) {
	bindings := current(c).Bundle.InterceptorBindings()
	views := make([]bindingView, 0, len(bindings))
	for _, b := range bindings {
		views = append(views, newBindingView(b))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getFindings(c *gin.Context) {
	lang := s.lang
	if accept := c.GetHeader("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			lang = tags[0]
		}
	}
	c.JSON(http.StatusOK, newFindingViews(current(c).Result, lang))
}

func (s *Server) getDiff(c *gin.Context) {
	c.String(http.StatusOK, current(c).Diff())
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.diagnostics.Info("Serving %s on %s", s.path, addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServeCommand(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <snapshot.yaml>",
		Short: "Serve a resolved snapshot over HTTP",
		Long: `Serve resolves a snapshot and exposes the resolved store read-only:

  GET /bundle              pass summary
  GET /components          every component descriptor
  GET /components/:name    one component descriptor
  GET /interceptors        interceptor descriptors
  GET /bindings            interceptor bindings, inline first
  GET /findings            findings of the pass
  GET /diff                external and resolved stores as a unified diff
  GET /metrics             Prometheus metrics

The snapshot is resolved again when its file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			lang, err := global.language()
			if err != nil {
				return err
			}
			diagnostics := global.diagnostics(cmd.OutOrStdout(), cmd.ErrOrStderr(), utils.DiagnosticInfo)
			if !global.debug {
				gin.SetMode(gin.ReleaseMode)
			}

			diagnostics.Header("serving " + args[0])
			server := NewServer(args[0], cfg, lang, diagnostics)
			if _, err := server.Current(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
