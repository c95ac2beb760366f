package bootstrap

import (
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// StartEmbeddedNATSServer runs an in-process NATS server on the given port.
// Urgent-email alerts, morning briefs and chat events all flow through it,
// so the server must be up before any service publishes.
func StartEmbeddedNATSServer(logger *log.Logger, port int) (*server.Server, error) {
	opts := &server.Options{Port: port}

	s, err := server.NewServer(opts)
	if err != nil {
		return nil, err
	}

	go s.Start()

	if !s.ReadyForConnections(10 * time.Second) {
		return nil, errors.New("NATS server not ready in time")
	}

	addr := s.Addr()
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, errors.New("unexpected address type")
	}

	logger.Info("Started NATS server", "port", tcpAddr.Port)
	return s, nil
}

func NatsURL(port int) string {
	return fmt.Sprintf("nats://127.0.0.1:%d", port)
}

func NewNatsClient(url string) (*nats.Conn, error) {
	return nats.Connect(url)
}
