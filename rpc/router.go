package rpc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pantun-api/logger"
	"pantun-api/metrics"
)

const BasePath = "/api/trpc"

type Server struct {
	procs   map[string]Procedure
	order   []Procedure
	metrics *metrics.Metrics
}

// NewServer indexes procs by name. Duplicate or empty names are rejected.
func NewServer(procs []Procedure, m *metrics.Metrics) (*Server, error) {
	s := &Server{procs: make(map[string]Procedure, len(procs)), metrics: m}
	for _, p := range procs {
		if p.Name == "" || p.call == nil {
			return nil, fmt.Errorf("procedure %q is incomplete", p.Name)
		}
		if _, dup := s.procs[p.Name]; dup {
			return nil, fmt.Errorf("duplicate procedure %q", p.Name)
		}
		s.procs[p.Name] = p
		s.order = append(s.order, p)
	}
	return s, nil
}

func (s *Server) Register(r gin.IRouter) {
	g := r.Group(BasePath)
	g.GET("/:procedure", s.handle(KindQuery))
	g.POST("/:procedure", s.handle(KindMutation))

	r.GET("/api/panel", s.panel)
}

func (s *Server) handle(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("procedure")
		p, ok := s.procs[name]
		if !ok {
			s.fail(c, name, NotFound("No procedure found on path %q", name))
			return
		}
		if p.Kind != kind {
			s.fail(c, name, &Error{Code: CodeMethodNotSupported, Message: fmt.Sprintf("%s is a %s", name, p.Kind)})
			return
		}

		var input []byte
		if kind == KindQuery {
			input = []byte(c.Query("input"))
		} else {
			b, err := io.ReadAll(c.Request.Body)
			if err != nil {
				s.fail(c, name, BadRequest("read body: %s", err.Error()))
				return
			}
			input = b
		}

		ctx := context.WithValue(c.Request.Context(), logger.ProcedureKey, name)
		start := time.Now()
		out, err := p.call(ctx, input)
		if err != nil {
			rpcErr := AsError(err)
			if rpcErr.Code == CodeInternal {
				logger.WithContext(ctx).Error("procedure failed", "error", err)
			}
			s.observe(name, rpcErr.Code, start)
			s.fail(c, name, rpcErr)
			return
		}
		s.observe(name, "OK", start)
		c.JSON(http.StatusOK, gin.H{"result": gin.H{"data": out}})
	}
}

func (s *Server) fail(c *gin.Context, name string, e *Error) {
	c.JSON(e.HTTPStatus(), gin.H{"error": gin.H{
		"code":      e.Code,
		"message":   e.Message,
		"procedure": name,
	}})
}

func (s *Server) observe(name string, code Code, start time.Time) {
	if s.metrics != nil {
		s.metrics.Observe(name, string(code), time.Since(start))
	}
}

func (s *Server) panel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": BasePath, "procedures": s.order})
}
