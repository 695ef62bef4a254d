package stats

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = "# pxname,svname,status,\nweb,FRONTEND,OPEN,\nweb,BACKEND,UP,\n\n"

// serveOnce listens on a unix socket in a temp dir and answers one connection
// with the given chunks. It returns the socket path and a channel carrying the
// bytes the client sent.
func serveOnce(t *testing.T, chunks ...string) (string, <-chan string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stats.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- string(buf[:n])

		for _, chunk := range chunks {
			if _, err := conn.Write([]byte(chunk)); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	return path, received
}

func newTestCollector(path string) *Collector {
	c := NewCollector(path)
	c.SetLogger(logger.Noop())
	c.SetTimeout(2 * time.Second)
	return c
}

func TestCollect_UnixSocket(t *testing.T) {
	path, received := serveOnce(t, sampleReply)

	reply, err := newTestCollector(path).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sampleReply, reply)
	assert.Equal(t, "show stat\\;\n", <-received)
}

func TestCollect_MultipleChunks(t *testing.T) {
	path, _ := serveOnce(t, "# pxname,svname,", "status,\nweb,BACKEND,UP,\n", "\n")

	c := newTestCollector(path)
	c.SetChunkSize(16)

	reply, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "# pxname,svname,status,\nweb,BACKEND,UP,\n\n", reply)
}

func TestCollect_CustomCommand(t *testing.T) {
	path, received := serveOnce(t, sampleReply)

	c := newTestCollector(path)
	c.SetCommand("show stat -1 4 -1\n")

	_, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "show stat -1 4 -1\n", <-received)
}

func TestCollect_MissingSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sock")

	_, err := newTestCollector(path).Collect(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	var chkErr *errors.Error
	require.True(t, stderrors.As(err, &chkErr))
	assert.Equal(t, "No socket found at path '"+path+"'.", chkErr.Message)
}

func TestCollect_NotASocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain-file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	_, err := newTestCollector(path).Collect(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrConnect))
	assert.Contains(t, err.Error(), "Failed to create a socket connection to '"+path+"'.")
}

func TestCollect_NoTerminator(t *testing.T) {
	// Peer answers without the blank line and then hangs up.
	path, _ := serveOnce(t, "# pxname,svname,status,\nweb,BACKEND,UP,\n")

	_, err := newTestCollector(path).Collect(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	var chkErr *errors.Error
	require.True(t, stderrors.As(err, &chkErr))
	assert.Equal(t, "Did not receive an 'eof' in reply. Exiting to prevent loop.", chkErr.Message)
}

// fakeConn scripts the results of Write and Read calls.
type fakeConn struct {
	net.Conn
	writes  []int
	reads   []string
	readErr error
	written []byte
	closed  bool
}

func (f *fakeConn) Write(b []byte) (int, error) {
	if len(f.writes) == 0 {
		f.written = append(f.written, b...)
		return len(b), nil
	}
	n := f.writes[0]
	f.writes = f.writes[1:]
	if n > len(b) {
		n = len(b)
	}
	f.written = append(f.written, b[:n]...)
	return n, nil
}

func (f *fakeConn) Read(b []byte) (int, error) {
	if len(f.reads) == 0 {
		if f.readErr != nil {
			return 0, f.readErr
		}
		return 0, nil
	}
	chunk := f.reads[0]
	f.reads = f.reads[1:]
	return copy(b, chunk), nil
}

func (f *fakeConn) Close() error                       { f.closed = true; return nil }
func (f *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (f *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// fakeCollector returns a collector whose socket path exists and whose dialer
// hands out conn.
func fakeCollector(t *testing.T, conn *fakeConn) *Collector {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.sock")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	c := newTestCollector(path)
	c.SetDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		assert.Equal(t, "unix", network)
		assert.Equal(t, path, address)
		return conn, nil
	})
	return c
}

func TestCollect_PartialWrites(t *testing.T) {
	conn := &fakeConn{writes: []int{3, 4, 100}, reads: []string{sampleReply}}

	reply, err := fakeCollector(t, conn).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sampleReply, reply)
	assert.Equal(t, "show stat\\;\n", string(conn.written))
	assert.True(t, conn.closed)
}

func TestCollect_ZeroByteWrite(t *testing.T) {
	conn := &fakeConn{writes: []int{4, 0}}

	_, err := fakeCollector(t, conn).Collect(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	assert.Contains(t, err.Error(), "Socket connection broken!")
	assert.True(t, conn.closed)
}

func TestCollect_AttemptBudget(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		reads    []string
		wantErr  bool
	}{
		{
			name:     "terminator on last allowed read",
			attempts: 3,
			reads:    []string{"# a,b\n", "x,y\n", "\n"},
			wantErr:  false,
		},
		{
			name:     "terminator one read too late",
			attempts: 2,
			reads:    []string{"# a,b\n", "x,y\n", "\n"},
			wantErr:  true,
		},
		{
			name:     "empty reads burn attempts",
			attempts: 10,
			reads:    []string{},
			wantErr:  true,
		},
		{
			name:     "terminator split across reads",
			attempts: 10,
			reads:    []string{"# a,b\nx,y\n", "\n"},
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{reads: tt.reads}
			c := fakeCollector(t, conn)
			c.SetAttempts(tt.attempts)

			reply, err := c.Collect(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Did not receive an 'eof' in reply.")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, reply, "\n\n")
		})
	}
}

func TestCollect_ReadError(t *testing.T) {
	conn := &fakeConn{readErr: stderrors.New("connection reset by peer")}
	c := fakeCollector(t, conn)

	_, err := c.Collect(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	var chkErr *errors.Error
	require.True(t, stderrors.As(err, &chkErr))
	assert.Equal(t, "Failed to poll stats from '"+c.Socket()+"'. Error [connection reset by peer]", chkErr.Message)
	assert.Empty(t, chkErr.Suggestion)
	assert.EqualError(t, chkErr.Cause, "connection reset by peer")
}

func TestCollect_EOFBeforeTerminator(t *testing.T) {
	conn := &fakeConn{reads: []string{"# a,b\n"}, readErr: io.EOF}

	_, err := fakeCollector(t, conn).Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did not receive an 'eof' in reply.")
}

func TestCollect_DialError(t *testing.T) {
	c := fakeCollector(t, nil)
	c.SetDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, stderrors.New("connection refused")
	})

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnect))
}

func TestSetters_IgnoreInvalidValues(t *testing.T) {
	c := NewCollector("/tmp/x.sock")
	c.SetAttempts(0)
	c.SetChunkSize(-1)
	c.SetCommand("")

	assert.Equal(t, DefaultAttempts, c.attempts)
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultCommand, c.command)
	assert.Equal(t, "/tmp/x.sock", c.Socket())
}

func TestTrimReply(t *testing.T) {
	assert.Equal(t, "pxname,svname\n", TrimReply("# pxname,svname\n"))
	assert.Equal(t, "", TrimReply("#"))
	assert.Equal(t, "", TrimReply(""))
}
