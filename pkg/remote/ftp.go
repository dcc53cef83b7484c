// Package remote talks to the media feed FTP server: dialing sessions,
// walking the remote tree, and retrieving files.
package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/grovetools/ausec/errors"
	"github.com/jlaffaye/ftp"
)

// Conn is one logged-in FTP session.
type Conn interface {
	// NameList returns the names in a remote directory (NLST).
	NameList(path string) ([]string, error)
	// Retr opens a remote file for reading (RETR). The reader must be closed
	// before the next command is issued on the session.
	Retr(path string) (io.ReadCloser, error)
	// Close ends the session.
	Close() error
}

// Dialer opens new sessions. Every listing and every download uses its own.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
	Addr() string
}

// FTPDialer dials a real FTP server and logs in.
type FTPDialer struct {
	Host        string
	Port        int
	User        string
	Password    string
	Timeout     time.Duration
	DisableEPSV bool
}

// Addr returns host:port.
func (d *FTPDialer) Addr() string {
	port := d.Port
	if port == 0 {
		port = 21
	}
	return net.JoinHostPort(d.Host, strconv.Itoa(port))
}

// Dial connects and logs in. Any failure is a CONNECTION_FAILED error.
func (d *FTPDialer) Dial(ctx context.Context) (Conn, error) {
	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithDisabledEPSV(d.DisableEPSV),
	}
	if d.Timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(d.Timeout))
	}

	c, err := ftp.Dial(d.Addr(), opts...)
	if err != nil {
		return nil, errors.Connection(d.Addr(), err)
	}

	user, password := d.User, d.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err := c.Login(user, password); err != nil {
		_ = c.Quit()
		return nil, errors.Connection(d.Addr(), fmt.Errorf("login as %s: %w", user, err))
	}
	return &ftpConn{c: c}, nil
}

type ftpConn struct {
	c *ftp.ServerConn
}

func (f *ftpConn) NameList(path string) ([]string, error) {
	return f.c.NameList(path)
}

func (f *ftpConn) Retr(path string) (io.ReadCloser, error) {
	return f.c.Retr(path)
}

func (f *ftpConn) Close() error {
	return f.c.Quit()
}

// Open dials a session, reporting any failure as CONNECTION_FAILED.
func Open(ctx context.Context, d Dialer) (Conn, error) {
	conn, err := d.Dial(ctx)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Connection(d.Addr(), err)
	}
	return conn, nil
}
