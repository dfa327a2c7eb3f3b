package logger

import (
	log "log/slog"
	"net/http"
	"time"
)

// HTTPTransport 记录对外 HTTP 调用，请求体可能含图片，只记录大小
type HTTPTransport struct {
	Name      string
	Transport http.RoundTripper
	Slow      time.Duration
}

func NewHTTPTransport(name string, slow time.Duration) *HTTPTransport {
	return &HTTPTransport{Name: name, Transport: http.DefaultTransport, Slow: slow}
}

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	base := t.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("target", t.Name),
		log.String("method", req.Method),
		log.String("host", req.URL.Host),
		log.String("path", req.URL.Path),
		log.Int64("req_bytes", req.ContentLength),
		log.Duration("latency", elapsed),
	}

	if err != nil {
		log.ErrorContext(req.Context(), "HTTP_CALL_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	fields = append(fields, log.Int("status", resp.StatusCode), log.Int64("res_bytes", resp.ContentLength))
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		log.ErrorContext(req.Context(), "HTTP_CALL_FAILED", fields...)
	case t.Slow > 0 && elapsed > t.Slow:
		log.WarnContext(req.Context(), "HTTP_CALL_SLOW", fields...)
	default:
		log.DebugContext(req.Context(), "HTTP_CALL", fields...)
	}

	return resp, nil
}
