package notify

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

const streamBuffer = 64

// StreamHandler expone los cambios como server-sent events.
// Query params: uri (default: todo) y descendants (default true).
//
// @Summary Stream de cambios
// @Description Server-sent events con un evento "change" por notificación.
// @Tags changes
// @Produce text/event-stream
// @Param uri query string false "Identificador a observar"
// @Param descendants query bool false "Incluir identificadores debajo de uri"
// @Success 200 {string} string "event stream"
// @Router /changes [get]
func StreamHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		descendants := true
		if v := r.URL.Query().Get("descendants"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "descendants must be a boolean", http.StatusBadRequest)
				return
			}
			descendants = b
		}

		obs := NewChanObserver(streamBuffer)
		sub := reg.Register(r.URL.Query().Get("uri"), descendants, obs)
		defer func() {
			reg.Unregister(sub)
			obs.Close()
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, ": subscribed %s\n\n", sub.ID)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case c, ok := <-obs.C():
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", uuid.NewString(), c.URI); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
