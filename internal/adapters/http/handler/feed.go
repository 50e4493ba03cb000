package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/platform/eventbus"
	"github.com/sirupsen/logrus"
)

const (
	feedWriteTimeout = 5 * time.Second
	feedSendBuffer   = 16
)

// Subscriber はトピック購読を提供します。eventbus.Bus が満たします。
type Subscriber interface {
	Subscribe(topic string, handler eventbus.Handler) eventbus.Subscription
}

// FeedOptions は Feed の設定です。
type FeedOptions struct {
	Logger      logrus.FieldLogger
	CheckOrigin func(r *http.Request) bool
	// SendBuffer は接続ごとの未送信メッセージ上限です。溢れた接続は切断します。
	SendBuffer int
}

// Feed は employeesUpdated を WebSocket 接続中のクライアントへ中継します。
// 接続直後に現在のフォレストを 1 度送り、以降は更新ごとに { "employees": [...] } を送ります。
// 書き込みは接続ごとの goroutine が行い、配信側はキューへ積むだけでブロックしません。
type Feed struct {
	source     orgchart.UseCase
	upgrader   websocket.Upgrader
	log        logrus.FieldLogger
	sub        eventbus.Subscription
	sendBuffer int

	mu     sync.Mutex
	conns  map[*feedConn]struct{}
	closed bool
}

// feedConn の primed と revision は Feed.mu で保護します。
type feedConn struct {
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
	primed   bool
	revision uint64
}

func newFeedConn(ws *websocket.Conn, buffer int) *feedConn {
	return &feedConn{
		ws:      ws,
		send:    make(chan []byte, buffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// offer は revision が既に送ったものより新しい場合だけキューに積みます。
// キューが満杯なら false を返します。Feed.mu を保持して呼びます。
func (c *feedConn) offer(b []byte, revision uint64) bool {
	if c.primed && revision <= c.revision {
		return true
	}
	select {
	case c.send <- b:
		c.primed = true
		c.revision = revision
		return true
	default:
		return false
	}
}

func (c *feedConn) writeLoop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout)); err != nil {
				c.close()
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *feedConn) close() {
	c.once.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// NewFeed は Feed を生成し、更新トピックを購読します。
func NewFeed(source orgchart.UseCase, bus Subscriber, opts FeedOptions) *Feed {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	buffer := opts.SendBuffer
	if buffer <= 0 {
		buffer = feedSendBuffer
	}

	f := &Feed{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		log:        log,
		sendBuffer: buffer,
		conns:      make(map[*feedConn]struct{}),
	}
	f.sub = bus.Subscribe(orgchart.TopicEmployeesUpdated, f.onUpdated)
	return f
}

// ServeHTTP は接続を WebSocket にアップグレードし、切断まで保持します。
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.WithError(err).Warn("feed: upgrade failed")
		return
	}
	conn := newFeedConn(ws, f.sendBuffer)

	if !f.add(conn) {
		_ = ws.Close()
		return
	}
	go conn.writeLoop()
	defer func() {
		f.drop(conn)
		<-conn.stopped
	}()

	// 登録後に取得するため、この間の更新は取りこぼしません。
	// 先に届いた新しい更新はリビジョン比較でスナップショットより優先されます。
	forest, revision, err := f.source.Latest(r.Context())
	if err != nil {
		f.log.WithError(err).Warn("feed: initial snapshot unavailable")
	} else if b, err := orgchart.EncodeDocument(forest); err == nil {
		f.mu.Lock()
		ok := conn.offer(b, revision)
		f.mu.Unlock()
		if !ok {
			return
		}
	}

	// クライアントからのメッセージは読み捨て、切断検知にのみ使います。
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Connections は接続中のクライアント数を返します。
func (f *Feed) Connections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// Close は購読を解除し、全接続を閉じます。
func (f *Feed) Close() {
	f.sub.Unsubscribe()

	f.mu.Lock()
	f.closed = true
	conns := make([]*feedConn, 0, len(f.conns))
	for c := range f.conns {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

func (f *Feed) onUpdated(payload any) {
	ev, ok := payload.(orgchart.UpdatedEvent)
	if !ok {
		return
	}
	b, err := orgchart.EncodeDocument(ev.Employees)
	if err != nil {
		f.log.WithError(err).Error("feed: encode update")
		return
	}

	var slow []*feedConn
	f.mu.Lock()
	for c := range f.conns {
		if !c.offer(b, ev.Revision) {
			delete(f.conns, c)
			slow = append(slow, c)
		}
	}
	f.mu.Unlock()

	for _, c := range slow {
		f.log.WithField("revision", ev.Revision).Warn("feed: send buffer full, closing connection")
		c.close()
	}
}

func (f *Feed) add(c *feedConn) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.conns[c] = struct{}{}
	return true
}

func (f *Feed) drop(c *feedConn) {
	f.mu.Lock()
	delete(f.conns, c)
	f.mu.Unlock()
	c.close()
}
