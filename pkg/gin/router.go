// Package gin exposes the typed-data codec and signature codec over HTTP.
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feng001-8/work/mechanisms/evm"
	"github.com/feng001-8/work/pkg/logger"
)

// DefaultRequestIDHeader carries the request ID when none is configured
const DefaultRequestIDHeader = "X-Request-Id"

// RouterOptions is the options for NewRouter.
type RouterOptions struct {
	RequestIDHeader string
	Logger          *zap.Logger
	ChainReader     evm.ChainReader
}

// Options is the type for the options for NewRouter.
type Options func(*RouterOptions)

// WithRequestIDHeader sets the header read and written for request IDs.
func WithRequestIDHeader(header string) Options {
	return func(options *RouterOptions) {
		options.RequestIDHeader = header
	}
}

// WithLogger sets the access and error logger.
func WithLogger(l *zap.Logger) Options {
	return func(options *RouterOptions) {
		options.Logger = l
	}
}

// WithChainReader enables the nonce lookup endpoint.
func WithChainReader(reader evm.ChainReader) Options {
	return func(options *RouterOptions) {
		options.ChainReader = reader
	}
}

// NewRouter builds the permitd HTTP API
func NewRouter(opts ...Options) *gin.Engine {
	options := &RouterOptions{
		RequestIDHeader: DefaultRequestIDHeader,
		Logger:          logger.L(),
	}
	for _, opt := range opts {
		opt(options)
	}

	router := gin.New()
	router.Use(RequestID(options.RequestIDHeader, options.Logger), AccessLog(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	v1.POST("/typed-data/hash", hashTypedData)
	v1.POST("/signatures/recover", recoverSignature)
	v1.POST("/signatures/verify", verifySignature)
	v1.POST("/signatures/split", splitSignature)
	if options.ChainReader != nil {
		v1.GET("/nonces/:contract/:owner", currentNonce(options.ChainReader))
	}

	return router
}
