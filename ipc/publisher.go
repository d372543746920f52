package ipc

import "sync"

// Publisher holds the most recent summary. The simulation goroutine publishes
// once per frame; feed connections sample it at their own pace.
type Publisher struct {
	mu      sync.Mutex
	latest  SummaryMessage
	version uint64
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(s SummaryMessage) {
	p.mu.Lock()
	p.latest = s
	p.version++
	p.mu.Unlock()
}

// Latest returns the newest summary and its version. Version 0 means nothing
// has been published yet.
func (p *Publisher) Latest() (SummaryMessage, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.version
}
