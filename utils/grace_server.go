package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	inheritedListenerEnv = "BOARD_INHERITED_LISTENER"
	inheritedListenerFD  = 3
)

// ShutdownHook releases a resource once the HTTP server stopped accepting requests.
type ShutdownHook struct {
	Name string
	Run  func(context.Context) error
}

// BoardServer serves HTTP until SIGINT/SIGTERM, then drains requests and runs
// its hooks. SIGUSR2 hands the listening socket to a fresh copy of the binary
// before draining, so restarts drop no connections.
type BoardServer struct {
	http            *http.Server
	shutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	hooks    []ShutdownHook

	stopOnce sync.Once
	stopped  chan struct{}
	signals  chan os.Signal
}

// NewBoardServer wraps handler with the default timeouts.
func NewBoardServer(addr string, handler http.Handler) *BoardServer {
	return &BoardServer{
		http: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		shutdownTimeout: DefaultShutdownTimeout,
		stopped:         make(chan struct{}),
		signals:         make(chan os.Signal, 1),
	}
}

// OnShutdown registers a hook. Hooks run in reverse registration order.
func (s *BoardServer) OnShutdown(name string, run func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, ShutdownHook{Name: name, Run: run})
}

// ListenAndServe listens on the configured address, or on the socket inherited
// from a restarting parent, and blocks until shutdown has finished.
func (s *BoardServer) ListenAndServe() error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	signal.Notify(s.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR2)
	go s.watchSignals()
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *BoardServer) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	err := s.http.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-s.stopped
	return nil
}

// Shutdown drains in-flight requests and runs the hooks once. Hook failures
// are logged and do not stop the remaining hooks.
func (s *BoardServer) Shutdown() {
	s.stopOnce.Do(func() {
		signal.Stop(s.signals)
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			Sugar.Errorw("http shutdown", "error", err)
		} else {
			Sugar.Info("http server drained")
		}

		s.mu.Lock()
		hooks := append([]ShutdownHook(nil), s.hooks...)
		s.mu.Unlock()
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i].Run(ctx); err != nil {
				Sugar.Errorw("shutdown hook failed", "hook", hooks[i].Name, "error", err)
				continue
			}
			Sugar.Infow("shutdown hook done", "hook", hooks[i].Name)
		}
		close(s.stopped)
	})
}

func (s *BoardServer) listen() (net.Listener, error) {
	if os.Getenv(inheritedListenerEnv) != "" {
		ln, err := net.FileListener(os.NewFile(inheritedListenerFD, "listener"))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	addr := s.http.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

func (s *BoardServer) watchSignals() {
	for sig := range s.signals {
		switch sig {
		case syscall.SIGUSR2:
			pid, err := s.handOver()
			if err != nil {
				Sugar.Errorw("restart failed, still serving", "error", err)
				continue
			}
			Sugar.Infow("restarted, draining old process", "pid", pid)
		default:
			Sugar.Infow("stopping", "signal", sig.String())
		}
		s.Shutdown()
		return
	}
}

// handOver starts a copy of the running binary that inherits the listener.
func (s *BoardServer) handOver() (int, error) {
	s.mu.Lock()
	tcp, ok := s.listener.(*net.TCPListener)
	s.mu.Unlock()
	if !ok {
		return 0, errors.New("listener cannot be handed over")
	}
	file, err := tcp.File()
	if err != nil {
		return 0, fmt.Errorf("listener file: %w", err)
	}
	defer file.Close()

	env := append(os.Environ(), inheritedListenerEnv+"=1")
	return syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
}
