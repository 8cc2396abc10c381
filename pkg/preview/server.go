package preview

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
	"github.com/vango-dev/vbind/pkg/metrics"
)

//go:embed client.js
var clientScript string

// ErrClosed is returned by Do after the event loop stopped.
var ErrClosed = errors.New("preview: event loop stopped")

// Config configures a Server.
type Config struct {
	// Addr is the listen address for ListenAndServe (default: "localhost:8080").
	Addr string

	// Title is the page title (default: "vbind preview").
	Title string

	// PushInterval is the minimum time between two pushes (default: 50ms).
	PushInterval time.Duration

	// ReadTimeout is how long a client may stay silent, pings included
	// (default: 60s).
	ReadTimeout time.Duration

	// MaxMessageSize limits client messages in bytes (default: 64KB).
	MaxMessageSize int64

	// SendBuffer is the number of pushes queued per client before the
	// client is dropped (default: 16).
	SendBuffer int

	// CheckOrigin validates WebSocket origins. Default: same host only.
	CheckOrigin func(r *http.Request) bool

	// Logger is the logger (default: slog.Default()).
	Logger *slog.Logger

	// Metrics records pushes and client activity. Optional.
	Metrics *metrics.Collector

	// Gatherer serves /metrics (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:8080"
	}
	if c.Title == "" {
		c.Title = "vbind preview"
	}
	if c.PushInterval <= 0 {
		c.PushInterval = 50 * time.Millisecond
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 16
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
}

// Server serves one document to any number of clients.
type Server struct {
	doc      *htmldom.Document
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	tasks   chan func()
	stopped chan struct{}
	running atomic.Bool

	// Owned by the event loop.
	dirty bool
	seq   uint64

	mu      sync.Mutex
	clients map[string]*client
}

// New creates a server for doc. The document must not be used outside Do
// once Run has started.
func New(doc *htmldom.Document, cfg Config) *Server {
	cfg.applyDefaults()
	s := &Server{
		doc:     doc,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "preview"),
		tasks:   make(chan func(), 64),
		stopped: make(chan struct{}),
		clients: make(map[string]*client),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.CheckOrigin,
	}
	return s
}

// Run runs the event loop until ctx is done. It may be called once.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("preview: Run called twice")
	}
	defer close(s.stopped)

	stop := s.doc.Observe(func(htmldom.Mutation) { s.dirty = true })
	defer stop()

	ticker := time.NewTicker(s.cfg.PushInterval)
	defer ticker.Stop()

	s.logger.Info("event loop started", "push_interval", s.cfg.PushInterval)
	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			s.logger.Info("event loop stopped")
			return nil
		case task := <-s.tasks:
			s.runTask(task)
		case <-ticker.C:
			if s.dirty {
				s.push()
			}
		}
	}
}

func (s *Server) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", "panic", r)
		}
	}()
	task()
}

// Do runs fn on the event loop and waits for it to finish.
func (s *Server) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	select {
	case s.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves Handler on cfg.Addr and runs the event loop until
// ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.Run(ctx) }()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("preview listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-loopErr
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script>{{.Script}}</script>
</head>
<body>{{.Body}}</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var body string
	if err := s.Do(r.Context(), func() { body = s.renderBody() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, map[string]any{
		"Title":  s.cfg.Title,
		"Script": template.JS(clientScript),
		"Body":   template.HTML(body),
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// renderBody runs on the event loop.
func (s *Server) renderBody() string {
	return htmldom.InnerHTML(s.doc.Body(), htmldom.WithNodeIDs())
}

// push renders the body and queues it for every client. Runs on the
// event loop.
func (s *Server) push() {
	start := time.Now()
	body := s.renderBody()
	s.dirty = false
	s.seq++

	data, err := json.Marshal(Message{Type: TypeHTML, Seq: s.seq, HTML: body})
	if err != nil {
		s.logger.Error("push encode failed", "error", err)
		return
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordPush(len(data), time.Since(start))
	}

	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			s.logger.Warn("client too slow, dropping", "client_id", c.id)
			s.recordWebSocketError("slow_client")
			c.close()
		}
	}
	s.logger.Debug("pushed document", "seq", s.seq, "bytes", len(data), "clients", len(clients))
}

// apply handles a client event on the event loop.
func (s *Server) apply(c *client, ev ClientEvent) {
	if !clientEventTypes[ev.Type] {
		s.logger.Warn("unknown client event", "type", ev.Type, "client_id", c.id)
		s.recordWebSocketError("bad_event")
		return
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordClientEvent(ev.Type)
	}

	n := s.doc.FindByID(dom.NodeID(ev.ID))
	el, ok := n.(dom.Element)
	if dom.IsNil(n) || !ok {
		s.logger.Debug("client event for unknown node", "node_id", ev.ID, "type", ev.Type)
		return
	}
	if fc, ok := el.(dom.FormControl); ok {
		if ev.Value != nil && fc.Value() != *ev.Value {
			fc.SetValue(*ev.Value)
		}
		if ev.Checked != nil && fc.Checked() != *ev.Checked {
			fc.SetChecked(*ev.Checked)
		}
	}
	el.DispatchEvent(dom.NewEvent(ev.Type))
}

func (s *Server) recordWebSocketError(kind string) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordWebSocketError(kind)
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ClientConnected()
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()
	if ok && s.cfg.Metrics != nil {
		s.cfg.Metrics.ClientDisconnected()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.recordWebSocketError("upgrade")
		return
	}

	c := newClient(s, conn, uuid.NewString())
	hello, _ := json.Marshal(Message{Type: TypeHello, Client: c.id})
	c.enqueue(hello)

	// Registering and rendering on the loop means no push is missed
	// between the initial document and the first update.
	err = s.Do(r.Context(), func() {
		data, _ := json.Marshal(Message{Type: TypeHTML, Seq: s.seq, HTML: s.renderBody()})
		c.enqueue(data)
		s.addClient(c)
	})
	if err != nil {
		conn.Close()
		return
	}

	s.logger.Info("client connected", "client_id", c.id, "remote_addr", r.RemoteAddr)
	go c.writeLoop()
	c.readLoop()
}
