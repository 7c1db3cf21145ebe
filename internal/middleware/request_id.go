package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"cic-consultas/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const clientIPKey ctxKey = "client_ip"

// RequestLogger loguea cada request con su request id (chi RequestID debe ir antes).
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  remoteHost(r.RemoteAddr),
			}
			if status >= http.StatusInternalServerError {
				log.Error("request", fields)
				return
			}
			log.Info("request", fields)
		})
	}
}

// ClientIP guarda en el contexto la IP del cliente (después de chi RealIP).
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteHost(r.RemoteAddr)
		if ip == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey, ip)))
	})
}

func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey).(string)
	return ip, ok && ip != ""
}

func remoteHost(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
