package stats

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/logger"
)

const (
	// DefaultCommand is sent verbatim, backslash included. The line feed ends
	// the command for the HAProxy CLI.
	DefaultCommand = "show stat\\;\n"
	// DefaultAttempts bounds the receive loop.
	DefaultAttempts = 10
	// DefaultChunkSize is the size of a single read.
	DefaultChunkSize = 4096
	// DefaultTimeout bounds the whole collect step.
	DefaultTimeout = 10 * time.Second
)

// Terminator is the blank line HAProxy writes after the last stats row.
var Terminator = []byte("\n\n")

// DialFunc opens a stream connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Collector reads the raw statistics table from one HAProxy stats socket.
type Collector struct {
	socket    string
	command   string
	attempts  int
	chunkSize int
	timeout   time.Duration
	dial      DialFunc
	log       logger.Logger
}

// NewCollector creates a collector for the unix socket at path.
func NewCollector(path string) *Collector {
	var d net.Dialer
	return &Collector{
		socket:    path,
		command:   DefaultCommand,
		attempts:  DefaultAttempts,
		chunkSize: DefaultChunkSize,
		timeout:   DefaultTimeout,
		dial:      d.DialContext,
		log:       logger.NewEnvLogger("[collect]"),
	}
}

// SetCommand overrides the query written to the socket.
func (c *Collector) SetCommand(cmd string) {
	if cmd != "" {
		c.command = cmd
	}
}

// SetAttempts sets how many reads may be made before giving up on the terminator.
func (c *Collector) SetAttempts(n int) {
	if n > 0 {
		c.attempts = n
	}
}

// SetChunkSize sets the buffer size of a single read.
func (c *Collector) SetChunkSize(n int) {
	if n > 0 {
		c.chunkSize = n
	}
}

// SetTimeout sets the wall-clock limit for connect, send and receive together.
// Zero disables it; the attempt budget still applies.
func (c *Collector) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetDialer replaces the function used to open the connection.
func (c *Collector) SetDialer(dial DialFunc) {
	c.dial = dial
}

// SetLogger replaces the collector's logger.
func (c *Collector) SetLogger(l logger.Logger) {
	c.log = l
}

// Socket returns the socket path this collector reads from.
func (c *Collector) Socket() string {
	return c.socket
}

// Collect connects, sends the command and returns the raw reply including the
// terminator. The connection is closed before Collect returns.
func (c *Collector) Collect(ctx context.Context) (string, error) {
	if _, err := os.Stat(c.socket); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("No socket found at path '%s'.", c.socket),
			"Check the 'stats socket' line in haproxy.cfg and the path passed to check-haproxy")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dial(ctx, "unix", c.socket)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConnect,
			fmt.Sprintf("Failed to create a socket connection to '%s'.", c.socket),
			"Check that haproxy is running and that this user may open the socket")
	}
	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := c.send(conn); err != nil {
		return "", err
	}
	return c.receive(conn)
}

// send writes the whole command, resuming after partial writes.
func (c *Collector) send(conn net.Conn) error {
	cmd := []byte(c.command)
	total := 0
	for total < len(cmd) {
		n, err := conn.Write(cmd[total:])
		if err != nil {
			return c.pollError(err)
		}
		if n == 0 {
			return errors.New(errors.ErrTransport,
				"Socket connection broken!",
				"The stats socket accepted the connection but took no data")
		}
		total += n
	}
	c.log.Debug("sent %q to %s", c.command, c.socket)
	return nil
}

// receive reads chunks until the accumulated reply holds the terminator or
// the attempt budget runs out.
func (c *Collector) receive(conn net.Conn) (string, error) {
	var reply bytes.Buffer
	buf := make([]byte, c.chunkSize)

	for attempt := 1; attempt <= c.attempts; attempt++ {
		n, err := conn.Read(buf)
		if n > 0 {
			reply.Write(buf[:n])
			if bytes.Contains(reply.Bytes(), Terminator) {
				c.log.Debug("reply complete after %d read(s), %d bytes", attempt, reply.Len())
				return reply.String(), nil
			}
		}
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				c.log.Debug("peer closed after %d bytes without terminator", reply.Len())
				break
			}
			return "", c.pollError(err)
		}
	}

	return "", errors.New(errors.ErrTransport,
		"Did not receive an 'eof' in reply. Exiting to prevent loop.",
		"Raise --attempts or --chunk-size if the stats table is very large")
}

func (c *Collector) pollError(err error) error {
	return errors.Wrap(err,
		fmt.Sprintf("Failed to poll stats from '%s'. Error [%s]", c.socket, strings.TrimSpace(err.Error())))
}

// TrimReply strips the two-character "# " comment marker HAProxy puts in
// front of the header line.
func TrimReply(reply string) string {
	if len(reply) < 2 {
		return ""
	}
	return reply[2:]
}
