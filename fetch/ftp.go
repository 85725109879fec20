package fetch

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/cjolowicz/cutty-sub001/internal/atomicfile"
	"github.com/jlaffaye/ftp"
)

// FTPFetcherError is returned when a download over FTP fails.
type FTPFetcherError struct {
	Err error
	URL string
}

func (e *FTPFetcherError) Error() string {
	return fmt.Sprintf("cannot download %s: %s", e.URL, e.Err)
}

func (e *FTPFetcherError) Unwrap() error {
	return e.Err
}

// FTPFetcher downloads files over FTP. Every fetch downloads the file again.
type FTPFetcher struct {
	timeout time.Duration
}

var _ SchemeFetcher = (*FTPFetcher)(nil)

// NewFTPFetcher returns an FTPFetcher which gives up on unresponsive servers
// after 30 seconds.
func NewFTPFetcher() *FTPFetcher {
	return &FTPFetcher{timeout: 30 * time.Second}
}

func (*FTPFetcher) Schemes() []string {
	return []string{"ftp"}
}

// WithTimeout returns a copy of the fetcher using the given timeout for
// connecting and for each response.
func (f *FTPFetcher) WithTimeout(timeout time.Duration) *FTPFetcher {
	fetcher := *f
	fetcher.timeout = timeout

	return &fetcher
}

// Fetch downloads u to the file dest. Credentials are taken from the URL;
// without them, the fetcher logs in anonymously.
func (f *FTPFetcher) Fetch(ctx context.Context, u *url.URL, dest, _ string) error {
	if err := f.fetch(ctx, u, dest); err != nil {
		return &FTPFetcherError{URL: u.Redacted(), Err: err}
	}

	return nil
}

func (f *FTPFetcher) fetch(ctx context.Context, u *url.URL, dest string) error {
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}

	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if f.timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(f.timeout))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return err
	}

	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}

	if err := conn.Login(user, pass); err != nil {
		return err
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return err
	}

	defer resp.Close()

	if err := clearDir(dest); err != nil {
		return err
	}

	if err := atomicfile.Write(dest, resp, 0o644); err != nil {
		return err
	}

	return resp.Close()
}
