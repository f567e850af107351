package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/packetctl/internal/observability"
	"github.com/danmuck/packetctl/internal/protocol/packet"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server exposes the packet decoder over HTTP.
type Server struct {
	ID       string    `json:"id"`
	Addr     string    `json:"addr"`
	Appeared time.Time `json:"appeared"`

	decoder *packet.Decoder
	router  *gin.Engine
}

func Appear(id, addr string, corsOrigins []string, limits packet.Limits) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  normalizeOrigins(corsOrigins),
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", observability.RequestIDHeader},
		ExposeHeaders: []string{observability.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		decoder:  packet.NewDecoder(limits).WithLogger(log.Logger),
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		limits := s.decoder.Limits()
		c.JSON(http.StatusOK, gin.H{
			"ready":          true,
			"service":        s.ID,
			"max_depth":      limits.MaxDepth,
			"max_input_bits": limits.MaxInputBits,
		})
	})

	s.router.POST("/packets/decode", func(c *gin.Context) {
		var req DecodeRequest
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes())
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		s.respond(c, req.Hex)
	})

	s.router.GET("/packets/:hex", func(c *gin.Context) {
		s.respond(c, c.Param("hex"))
	})
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.Addr)
}

// requestOverhead covers the JSON framing around the hex field.
const requestOverhead = 1024

// maxBodyBytes bounds POST bodies to the largest hex string the decoder
// accepts plus framing.
func (s *Server) maxBodyBytes() int64 {
	return int64(s.decoder.Limits().MaxInputBits/4 + requestOverhead)
}

// DecodeRequest is the POST /packets/decode body.
type DecodeRequest struct {
	Hex string `json:"hex"`
}

// Result is one decode+evaluate outcome. Tree and VersionSum are set whenever
// decoding succeeded, even if evaluation failed.
type Result struct {
	ID         string         `json:"id,omitempty"`
	VersionSum uint64         `json:"version_sum"`
	Value      *uint64        `json:"value,omitempty"`
	ValueText  string         `json:"value_str,omitempty"`
	Packets    int            `json:"packets,omitempty"`
	Depth      int            `json:"depth,omitempty"`
	Tree       *packet.Packet `json:"tree,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Decode decodes and evaluates hex without any transport concerns.
func (s *Server) Decode(hex string) (Result, error) {
	start := time.Now()
	hex = strings.TrimSpace(hex)

	tree, err := s.decoder.DecodeHex(hex)
	if err != nil {
		observability.RecordDecode(s.ID, outcomeFor(err), 0, 0, time.Since(start))
		log.Warn().Str("node", s.ID).Err(err).Msg("packet decode rejected")
		return Result{Error: err.Error()}, err
	}

	res := Result{
		VersionSum: tree.VersionSum(),
		Packets:    tree.Count(),
		Depth:      tree.Depth(),
		Tree:       &tree,
	}
	value, err := tree.Eval()
	if err != nil {
		observability.RecordDecode(s.ID, outcomeFor(err), res.Packets, res.Depth, time.Since(start))
		log.Warn().Str("node", s.ID).Err(err).Msg("packet evaluation failed")
		res.Error = err.Error()
		return res, err
	}
	res.Value = &value
	res.ValueText = strconv.FormatUint(value, 10)

	observability.RecordDecode(s.ID, observability.OutcomeOK, res.Packets, res.Depth, time.Since(start))
	log.Debug().
		Str("node", s.ID).
		Uint64("version_sum", res.VersionSum).
		Uint64("value", value).
		Int("packets", res.Packets).
		Msg("packet evaluated")
	return res, nil
}

func (s *Server) respond(c *gin.Context, hex string) {
	res, err := s.Decode(hex)
	res.ID = observability.RequestIDFrom(c)
	observability.SetDecodeOutcome(c, outcomeFor(err), res.Packets)
	c.JSON(statusFor(err), res)
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case packet.IsInvalid(err):
		return observability.OutcomeInvalid
	default:
		return observability.OutcomeMalformed
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, packet.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case packet.IsMalformed(err):
		return http.StatusBadRequest
	case packet.IsInvalid(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
