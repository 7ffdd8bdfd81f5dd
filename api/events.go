package api

import (
	"fmt"
	"net/http"

	"devopsctl/events"
)

// SSEHandler handles Server-Sent Events connections for run updates.
func SSEHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		// Buffered so a slow client never blocks a broadcast.
		client := make(chan string, 10)
		broker := events.GetBroker()
		broker.Register(client)
		defer broker.Unregister(client)

		fmt.Fprintf(w, "event: connected\ndata: {\"message\": \"connected to devopsctl events\"}\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		for {
			select {
			case message := <-client:
				fmt.Fprint(w, message)
				if flusher, ok := w.(http.Flusher); ok {
					flusher.Flush()
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}
