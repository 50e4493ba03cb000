package eventbus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler はトピックに配信されたペイロードを受け取ります。
type Handler func(payload any)

// Subscription は Subscribe が返す解除ハンドルです。Unsubscribe は何度呼んでも安全です。
type Subscription interface {
	Unsubscribe()
}

// Bus はプロセス内の同期 publish/subscribe です。
// 配信はトピックごとに発行順で、購読者がいなければ破棄されます（バッファ・リプレイなし）。
type Bus struct {
	log *logrus.Logger

	// publishMu は配信を直列化し、全購読者が同じ順序で受け取るようにします。
	publishMu sync.Mutex

	mu     sync.RWMutex
	nextID uint64
	topics map[string][]subscriber
}

type subscriber struct {
	id      uint64
	handler Handler
}

type subscription struct {
	bus   *Bus
	topic string
	id    uint64
	once  sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.topic, s.id)
	})
}

// New は Bus を生成します。log が nil の場合はログを出力しません。
func New(log *logrus.Logger) *Bus {
	return &Bus{log: log, topics: make(map[string][]subscriber)}
}

// Subscribe は topic の購読を登録します。
func (b *Bus) Subscribe(topic string, handler Handler) Subscription {
	if handler == nil {
		panic("eventbus: handler must not be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, handler: handler})
	return &subscription{bus: b, topic: topic, id: id}
}

// Publish は topic の現在の購読者へ payload を同期的に配信します。
// ハンドラの panic は回復してログに残し、残りの購読者への配信を続けます。
// ハンドラ内から Publish を呼ぶとデッドロックします。
func (b *Bus) Publish(topic string, payload any) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.RLock()
	subs := append([]subscriber(nil), b.topics[topic]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		if b.log != nil {
			b.log.WithField("topic", topic).Debug("eventbus: no subscribers, dropping event")
		}
		return
	}

	for _, sub := range subs {
		b.deliver(topic, sub, payload)
	}
}

func (b *Bus) deliver(topic string, sub subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.WithFields(logrus.Fields{
				"topic":         topic,
				"subscriber_id": sub.id,
			}).Errorf("eventbus: handler panicked: %v", r)
		}
	}()
	sub.handler(payload)
}

// SubscribersCount は topic の購読者数を返します。
func (b *Bus) SubscribersCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}
