package server

import (
	"time"

	"github.com/dotside-studios/rccard-agent/buildinfo"
)

// mDNS service discovery constants
var (
	MDNSServiceType = "_rccard-agent._tcp"
	MDNSServiceName = buildinfo.DisplayName
	MDNSDomain      = "local."
)

// HTTP routes
const (
	RouteWebSocket = "/ws"
	RouteHealth    = "/api/v1/health"
	RouteTag       = "/api/v1/tag"
	RouteDecode    = "/api/v1/decode"
	RouteLast      = "/api/v1/last"
)

// CORS configuration
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "GET, POST, OPTIONS"
	CORSAllowHeaders = "Content-Type, Authorization"
)

const (
	// DefaultSource identifies tags injected over HTTP without a source.
	DefaultSource = "http-api"

	// ShutdownTimeout bounds a graceful server shutdown.
	ShutdownTimeout = 5 * time.Second
)

const (
	maxRequestBody = 1 << 20
	writeWait      = 5 * time.Second
)
