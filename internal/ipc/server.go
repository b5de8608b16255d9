package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"conveyor/internal/api"
	"conveyor/internal/daemon"
	"conveyor/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	host      *daemon.Host
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The shutdown
// callback is invoked when a client requests daemon stop; it should end the
// daemon run loop.
func NewServer(ctx context.Context, path string, host *daemon.Host, shutdown func(), logger *slog.Logger) (*Server, error) {
	if host == nil {
		return nil, errors.New("ipc server requires host")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{host: host, shutdown: shutdown, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Conveyor", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		host:      host,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun conveyor stop"))
	}
}

type service struct {
	host     *daemon.Host
	shutdown func()
	logger   *slog.Logger
	ctx      context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(s.logger, "ipc")
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.Pong = true
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.Status = api.FromStatus(s.host.Status())
	return nil
}

func (s *service) Submit(req SubmitRequest, resp *SubmitResponse) error {
	s.log().Debug("submit requested",
		logging.String("kind", req.Kind),
		logging.String("payload", req.Payload))
	itemID, err := s.host.Submit(req.Kind, req.Payload)
	if err != nil {
		return err
	}
	resp.ItemID = itemID
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	outcomes, err := s.host.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	stats, err := s.host.OutcomeStats(s.ctx)
	if err != nil {
		return err
	}
	resp.Outcomes = api.FromOutcomes(outcomes)
	resp.Stats = api.MergeOutcomeStats(stats)
	return nil
}

func (s *service) Health(_ HealthRequest, resp *HealthResponse) error {
	resp.Targets = api.FromTargetStatuses(s.host.HealthSnapshot())
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.host.StopAll()
	resp.Stopped = true
	if s.shutdown != nil {
		s.shutdown()
	}
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}
