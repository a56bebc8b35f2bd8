package handlers

import "github.com/google/uuid"

// IndexQueue receives the ids of profiles whose search entry is stale.
type IndexQueue interface {
	Enqueue(studentID uuid.UUID)
}

type noopQueue struct{}

func (noopQueue) Enqueue(uuid.UUID) {}

func queueOrNoop(q IndexQueue) IndexQueue {
	if q == nil {
		return noopQueue{}
	}
	return q
}
