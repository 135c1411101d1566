package api

import (
	"net/http"

	"github.com/phrazzld/memberguard/internal/api/shared"
	"github.com/phrazzld/memberguard/internal/jobqueue"
)

// QueueHandler reports the load of the application's job queues.
type QueueHandler struct {
	queues []*jobqueue.Queue
}

// NewQueueHandler creates a new QueueHandler for the given queues.
func NewQueueHandler(queues ...*jobqueue.Queue) *QueueHandler {
	return &QueueHandler{queues: queues}
}

// ListQueues handles GET /queues requests.
func (h *QueueHandler) ListQueues(w http.ResponseWriter, r *http.Request) {
	response := make([]QueueResponse, 0, len(h.queues))
	for _, q := range h.queues {
		s := q.Stats()
		response = append(response, QueueResponse{
			Name:        s.Name,
			Concurrency: s.Concurrency,
			Running:     s.Running,
			Pending:     s.Pending,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
