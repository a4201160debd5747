// Package web provides an HTTP server for tokenizing source code.
//
// The server exposes a JSON API for tokenizing text and inspecting the
// loaded grammars, and serves a small playground page. When watching is
// enabled, grammar bundle changes are picked up without a restart and
// announced to connected clients as server-sent events.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robinvdvleuten/prisma"
	"github.com/robinvdvleuten/prisma/loader"
	"github.com/robinvdvleuten/prisma/telemetry"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("prisma.web")

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	WatchEnabled bool

	// Options configure every highlighter the server creates.
	Options []prisma.Option

	mu           sync.RWMutex
	highlighter  *prisma.Highlighter
	rootFile     string   // Absolute path of the root grammar bundle
	includeFiles []string // Absolute paths of included bundles

	// grammarFile is the bundle passed to New. The built-in grammars are
	// served when it is empty.
	grammarFile string

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(port int, grammarFile string) *Server {
	return NewWithVersion(port, grammarFile, "", "")
}

func NewWithVersion(port int, grammarFile, version, commitSHA string) *Server {
	return &Server{
		Port:        port,
		Host:        "127.0.0.1",
		Version:     version,
		CommitSHA:   commitSHA,
		grammarFile: grammarFile,
		sseClients:  make(map[chan string]struct{}),
	}
}

// Start loads the grammars and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	loadTimer := timer.Child("web.load_grammars")
	if err := s.reloadGrammars(ctx); err != nil {
		loadTimer.End()
		timer.End()
		return fmt.Errorf("failed to load grammars: %w", err)
	}
	loadTimer.End()

	if s.WatchEnabled && s.grammarFile != "" {
		if err := s.startWatcher(ctx); err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	setupTimer := timer.Child("web.setup_router")
	mux := s.setupRouter()
	setupTimer.End()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Noticef("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/tokenize", s.handleTokenize)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	s.mountAssets(mux)

	return mux
}

// reloadGrammars builds a fresh highlighter from the grammar bundle and
// swaps it in. Requests keep using the previous one until the swap.
func (s *Server) reloadGrammars(ctx context.Context) error {
	opts := append([]prisma.Option(nil), s.Options...)

	var h *prisma.Highlighter
	var root string
	var includes []string

	if s.grammarFile == "" {
		h = prisma.New(append(opts, prisma.WithEmbeddedGrammars())...)
		h.Languages()
	} else {
		result, err := loader.New(loader.WithFollowIncludes()).Load(ctx, s.grammarFile)
		if err != nil {
			return err
		}

		h = prisma.New(opts...)
		if _, err := h.LoadBundle(ctx, result.Bundle); err != nil {
			return err
		}
		root, includes = result.Root, result.Includes
	}

	if diags := h.Diagnostics(); len(diags) > 0 {
		log.Warningf("%d pattern(s) failed to compile", len(diags))
	}

	s.mu.Lock()
	s.highlighter = h
	s.rootFile = root
	s.includeFiles = includes
	s.mu.Unlock()

	return nil
}

func (s *Server) current() *prisma.Highlighter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlighter
}

// startWatcher starts a file watcher for the root bundle and all includes.
// It reloads the grammars and broadcasts SSE events when files change.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	s.mu.RLock()
	filesToWatch := append([]string{s.rootFile}, s.includeFiles...)
	s.mu.RUnlock()

	for _, file := range filesToWatch {
		if err := watcher.Add(file); err != nil {
			log.Warningf("failed to watch %s: %v", file, err)
		}
	}

	go s.runWatcher(ctx, watcher)

	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Editors often write files in multiple steps.
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Remove and Rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx, watcher)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("file watcher error: %v", err)
		}
	}
}

// handleFileChange reloads the grammars and updates the watch list.
func (s *Server) handleFileChange(ctx context.Context, watcher *fsnotify.Watcher) {
	s.mu.RLock()
	oldIncludes := make(map[string]bool)
	for _, f := range s.includeFiles {
		oldIncludes[f] = true
	}
	s.mu.RUnlock()

	if err := s.reloadGrammars(ctx); err != nil {
		log.Errorf("failed to reload grammars: %v", err)
		s.broadcast("error")
		return
	}

	s.mu.RLock()
	newIncludes := make(map[string]bool)
	for _, f := range s.includeFiles {
		newIncludes[f] = true
	}
	newRoot := s.rootFile
	s.mu.RUnlock()

	for file := range oldIncludes {
		if !newIncludes[file] {
			_ = watcher.Remove(file)
		}
	}

	// Re-add to catch files that were re-created.
	for file := range newIncludes {
		if err := watcher.Add(file); err != nil {
			log.Warningf("failed to watch %s: %v", file, err)
		}
	}
	if err := watcher.Add(newRoot); err != nil {
		log.Warningf("failed to watch root %s: %v", newRoot, err)
	}

	log.Infof("reloaded grammars from %s", filepath.Base(newRoot))
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}
