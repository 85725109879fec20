package gitfs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"

	"github.com/cjolowicz/cutty-sub001/internal/env"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Authenticator provides an AuthMethod for a given URL. If the URL is not
// appropriate for the given AuthMethod, an error will be returned.
type Authenticator interface {
	Authenticate(u *url.URL) (AuthMethod, error)
}

// AuthenticatorFunc adapts a function to an Authenticator.
type AuthenticatorFunc func(u *url.URL) (AuthMethod, error)

func (a AuthenticatorFunc) Authenticate(u *url.URL) (AuthMethod, error) {
	return a(u)
}

// AuthMethod is an HTTP or SSH authentication method that can be used to
// authenticate to a git repository.
// See the github.com/go-git/go-git module for details.
type AuthMethod interface {
	fmt.Stringer
	Name() string
}

var (
	_ Authenticator = AuthenticatorFunc(nil)
	_ Authenticator = (*basicAuthenticator)(nil)
	_ Authenticator = (*tokenAuthenticator)(nil)
	_ Authenticator = (*publicKeyAuthenticator)(nil)
	_ Authenticator = (*sshAgentAuthenticator)(nil)
)

// checkScheme fails unless u uses one of the given schemes.
func checkScheme(kind string, u *url.URL, schemes ...string) error {
	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Errorf("%s authentication not supported for scheme %q", kind, u.Scheme)
	}

	return nil
}

// AutoAuthenticator is an Authenticator that chooses the first available
// authenticator based on the given URL (when appropriate) and the environment
// variables, in this order of precedence:
//
//	BasicAuthenticator
//	TokenAuthenticator
//	PublicKeyAuthenticator
//	SSHAgentAuthenticator
//	NoopAuthenticator
//
// This is what a Fetcher uses unless told otherwise.
func AutoAuthenticator() Authenticator {
	chain := []Authenticator{
		BasicAuthenticator("", ""),
		TokenAuthenticator(""),
		PublicKeyAuthenticator("", nil, ""),
		SSHAgentAuthenticator(""),
		NoopAuthenticator(),
	}

	return AuthenticatorFunc(func(u *url.URL) (AuthMethod, error) {
		for _, auth := range chain {
			if method, err := auth.Authenticate(u); err == nil {
				return method, nil
			}
		}

		return nil, fmt.Errorf("no authentication method available for %s", u.Redacted())
	})
}

// NoopAuthenticator never authenticates. It can only be used with the "git",
// "file", "http" and "https" schemes, for local or public repositories.
func NoopAuthenticator() Authenticator {
	return AuthenticatorFunc(func(u *url.URL) (AuthMethod, error) {
		if err := checkScheme("no-op", u, "git", "file", "http", "https"); err != nil {
			return nil, err
		}

		return nil, nil
	})
}

// BasicAuthenticator provides HTTP Basic Authentication for http and https
// repositories.
//
// Credentials in the URL take precedence over the ones given here. If no
// password is found, GIT_HTTP_PASSWORD (or a file named by
// GIT_HTTP_PASSWORD_FILE) is used. Without a username or password, no
// authentication is attempted, which suits public repositories.
//
// For GitHub, GitLab and Bitbucket, use a personal access token as the
// password.
func BasicAuthenticator(username, password string) Authenticator {
	return &basicAuthenticator{envfsys: os.DirFS("/"), username: username, password: password}
}

type basicAuthenticator struct {
	envfsys            fs.FS
	username, password string
}

func (a *basicAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("basic", u, "http", "https"); err != nil {
		return nil, err
	}

	username := u.User.Username()
	if username == "" {
		username = a.username
	}

	password, _ := u.User.Password()
	if password == "" {
		password = a.password
	}

	if password == "" {
		password = env.Secret(a.envfsys, "GIT_HTTP_PASSWORD")
	}

	if username == "" && password == "" {
		return nil, nil
	}

	return &githttp.BasicAuth{Username: username, Password: password}, nil
}

// TokenAuthenticator provides HTTP bearer token authentication for http and
// https repositories. Without a token, GIT_HTTP_TOKEN (or a file named by
// GIT_HTTP_TOKEN_FILE) is used.
//
// Popular hosts expect tokens through Basic Authentication instead; see
// BasicAuthenticator.
func TokenAuthenticator(token string) Authenticator {
	return &tokenAuthenticator{envfsys: os.DirFS("/"), token: token}
}

type tokenAuthenticator struct {
	envfsys fs.FS
	token   string
}

func (a *tokenAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("token", u, "http", "https"); err != nil {
		return nil, err
	}

	token := a.token
	if token == "" {
		token = env.Secret(a.envfsys, "GIT_HTTP_TOKEN")
	}

	if token == "" {
		return nil, errors.New("token may not be empty for token authentication")
	}

	return &githttp.TokenAuth{Token: token}, nil
}

// PublicKeyAuthenticator provides SSH public key authentication for ssh
// repositories. The privKey is a PEM-encoded private key, encrypted with
// keyPass if that is not empty.
//
// Without a key, GIT_SSH_KEY (or a file named by GIT_SSH_KEY_FILE) is used,
// optionally base64-encoded.
func PublicKeyAuthenticator(username string, privKey []byte, keyPass string) Authenticator {
	return &publicKeyAuthenticator{
		envfsys: os.DirFS("/"), username: username, privKey: privKey, keyPass: keyPass,
	}
}

type publicKeyAuthenticator struct {
	envfsys  fs.FS
	username string
	keyPass  string
	privKey  []byte
}

func (a *publicKeyAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("public key", u, "ssh"); err != nil {
		return nil, err
	}

	username := u.User.Username()
	if username == "" {
		username = a.username
	}

	k := a.privKey
	if len(k) == 0 {
		envKey := env.Secret(a.envfsys, "GIT_SSH_KEY")

		decoded, err := base64.StdEncoding.DecodeString(envKey)
		if err != nil {
			decoded = []byte(envKey)
		}

		k = decoded
	}

	if len(k) == 0 {
		return nil, errors.New("private key may not be empty for public key authentication")
	}

	return ssh.NewPublicKeys(username, k, a.keyPass)
}

// SSHAgentAuthenticator authenticates ssh repositories through the agent
// listening on SSH_AUTH_SOCK. The username defaults to the current user.
func SSHAgentAuthenticator(username string) Authenticator {
	return &sshAgentAuthenticator{username: username}
}

type sshAgentAuthenticator struct {
	username string
}

func (a *sshAgentAuthenticator) Authenticate(u *url.URL) (AuthMethod, error) {
	if err := checkScheme("ssh-agent", u, "ssh"); err != nil {
		return nil, err
	}

	username := u.User.Username()
	if username == "" {
		username = a.username
	}

	return ssh.NewSSHAgentAuth(username)
}
