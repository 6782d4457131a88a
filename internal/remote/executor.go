package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Executor runs one shell command on the remote host and returns its
// combined output.
type Executor interface {
	Run(ctx context.Context, command string) (string, error)
}

// ErrNoAuth is returned when neither a key file nor an SSH agent is usable.
var ErrNoAuth = errors.New("no SSH authentication method available")

// SSHExecutor runs commands over a lazily dialed SSH connection, one fresh
// session per command.
type SSHExecutor struct {
	cfg    Config
	logger *log.Logger

	mu     sync.Mutex
	client *ssh.Client
}

func NewSSHExecutor(cfg Config, logger *log.Logger) *SSHExecutor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &SSHExecutor{cfg: cfg, logger: logger.WithPrefix("ssh")}
}

func (e *SSHExecutor) Run(ctx context.Context, command string) (string, error) {
	client, err := e.connect(ctx)
	if err != nil {
		return "", err
	}

	t := timeout.New[string](timeout.Config{DefaultTimeout: e.cfg.Timeout})
	out, err := t.Execute(ctx, e.cfg.Timeout, func(ctx context.Context) (string, error) {
		return runSession(ctx, client, command)
	})
	if err != nil {
		e.logger.Warn("command failed", "command", command, "err", err)
		e.drop(client)
		return out, fmt.Errorf("running %q: %w", command, err)
	}
	e.logger.Debug("command ran", "command", command)
	return out, nil
}

// Close releases the underlying connection, if any.
func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

func (e *SSHExecutor) connect(ctx context.Context) (*ssh.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}

	clientCfg, agentConn, err := e.clientConfig()
	if err != nil {
		return nil, err
	}
	defer closeQuietly(agentConn)

	r := retry.New[*ssh.Client](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	})
	addr := e.cfg.Addr()
	client, err := r.Do(ctx, func(ctx context.Context) (*ssh.Client, error) {
		return dial(ctx, addr, clientCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	e.logger.Info("connected", "addr", addr, "user", e.cfg.User)
	e.client = client
	return client, nil
}

// drop forgets a connection that failed so the next call dials again.
func (e *SSHExecutor) drop(client *ssh.Client) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == client {
		_ = e.client.Close()
		e.client = nil
	}
}

func (e *SSHExecutor) clientConfig() (*ssh.ClientConfig, io.Closer, error) {
	auth, agentConn, err := authMethods(e.cfg.KeyPath)
	if err != nil {
		return nil, nil, err
	}
	home, _ := os.UserHomeDir()
	hostKey := ssh.InsecureIgnoreHostKey()
	if path := knownHostsPath(e.cfg.KnownHostsPath, home); path != "" {
		if hostKey, err = knownhosts.New(path); err != nil {
			closeQuietly(agentConn)
			return nil, nil, fmt.Errorf("loading known hosts: %w", err)
		}
	} else {
		e.logger.Warn("no known_hosts file, host key is not verified", "addr", e.cfg.Addr())
	}
	return &ssh.ClientConfig{
		User:            e.cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         e.cfg.Timeout,
	}, agentConn, nil
}

// knownHostsPath is the configured file, else ~/.ssh/known_hosts when it
// exists, else "".
func knownHostsPath(configured, home string) string {
	if configured != "" {
		return configured
	}
	if home == "" {
		return ""
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// authMethods returns the key file and agent methods. The agent connection,
// when one is opened, is returned so the caller can close it once the
// handshake is over.
func authMethods(keyPath string) ([]ssh.AuthMethod, io.Closer, error) {
	var methods []ssh.AuthMethod
	if keyPath != "" {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading SSH key %s: %w", keyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing SSH key %s: %w", keyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	var agentConn io.Closer
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			agentConn = conn
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	if len(methods) == 0 {
		return nil, nil, ErrNoAuth
	}
	return methods, agentConn, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func dial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func runSession(ctx context.Context, client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session: %w", err)
	}
	defer session.Close()

	var buf bytes.Buffer
	session.Stdout = &buf
	session.Stderr = &buf

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case err := <-done:
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			// tmux reports a missing session through the exit code; the
			// output still carries the answer.
			return buf.String(), nil
		}
		return buf.String(), err
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}
