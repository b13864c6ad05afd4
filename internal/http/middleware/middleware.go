package middleware

import (
	"net/http"
)

// Middleware оборачивает http.Handler; цепочки собираются через Chain
// либо chi Router.Use.
type Middleware func(http.Handler) http.Handler

// Chain заворачивает обработчик в мидлвары: первый в списке оказывается
// внешним и видит запрос раньше остальных.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusWriter запоминает статус и число записанных байт ответа —
// их читают логирование и метрики после отработки обработчика.
type statusWriter struct {
	http.ResponseWriter
	status int
	count  int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w}
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	// Write без явного WriteHeader означает неявный 200.
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(p)
	w.count += n
	return n, err
}
