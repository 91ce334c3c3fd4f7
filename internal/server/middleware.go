package server

import (
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tasktracker/internal/auth"
)

// contextEmailKey is where the auth gate binds the verified email claim.
const contextEmailKey = "email"

// AuthGate verifies the bearer token and binds the email claim onto the
// request context. It does no store lookups; downstream handlers receive the
// email as an opaque ownership key.
func AuthGate(tokens *auth.TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		var token string
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
			token = parts[1]
		}
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized Access Token"})
			return
		}

		email, err := tokens.Verify(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid Token"})
			return
		}

		ctx.Set(contextEmailKey, email)
		ctx.Next()
	}
}

// authedEmail reads the claim the gate stored. Empty only if a handler is
// reachable without the gate, which is a routing bug.
func authedEmail(ctx *gin.Context) string {
	return ctx.GetString(contextEmailKey)
}

// CORS mirrors the permissive defaults the API has always served browsers
// with.
func CORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

// RateLimit applies a per-client token bucket to the routes it is mounted on.
// Limiters are keyed by client IP and kept for the process lifetime; the two
// credential endpoints see far too few distinct clients for eviction to
// matter.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	return func(ctx *gin.Context) {
		key := ctx.ClientIP()

		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		ctx.Next()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gw *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	w.Header().Del("Content-Length")
	return w.gw.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Gzip transparently decompresses gzip request bodies and compresses
// responses for clients that accept it.
func Gzip() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			gr, err := gzip.NewReader(ctx.Request.Body)
			if err != nil {
				ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid gzip request body"})
				return
			}
			ctx.Request.Body = gr
			ctx.Request.Header.Del("Content-Encoding")
			ctx.Request.Header.Del("Content-Length")
		}

		if ctx.Request.Method == http.MethodHead ||
			!strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		ctx.Header("Content-Encoding", "gzip")
		ctx.Header("Vary", "Accept-Encoding")
		gw := gzip.NewWriter(ctx.Writer)
		writer := &gzipResponseWriter{ResponseWriter: ctx.Writer, gw: gw}
		ctx.Writer = writer

		defer func() {
			_ = gw.Close()
			ctx.Header("Content-Length", strconv.Itoa(ctx.Writer.Size()))
		}()
		ctx.Next()
	}
}
