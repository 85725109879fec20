package fetch

import (
	"context"
	"net/url"
	"testing"

	"github.com/cjolowicz/cutty-sub001/internal/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMux(t *testing.T) {
	var calls []string

	record := func(name string) FetcherFunc {
		return func(_ context.Context, u *url.URL, dest, revision string) error {
			calls = append(calls, name+" "+u.String()+" "+dest+" "+revision)

			return nil
		}
	}

	m := NewMux()

	err := m.Fetch(context.Background(), tests.MustURL("foo:///x"), "dest", "")
	require.EqualError(t, err, `no fetcher registered for scheme "foo"`)

	m.Add(WithSchemes(record("a"), "foo", "bar"))
	m.Add(WithSchemes(record("b"), "baz", "qux"))

	require.NoError(t, m.Fetch(context.Background(), tests.MustURL("foo:///x"), "d1", ""))
	require.NoError(t, m.Fetch(context.Background(), tests.MustURL("qux://host/y"), "d2", "v1"))

	assert.Equal(t, []string{"a foo:///x d1 ", "b qux://host/y d2 v1"}, calls)
	assert.Equal(t, []string{"bar", "baz", "foo", "qux"}, m.Schemes())

	// later registrations override earlier ones
	m.Add(WithSchemes(record("c"), "foo"))
	require.NoError(t, m.Fetch(context.Background(), tests.MustURL("foo:///z"), "d3", ""))
	assert.Equal(t, "c foo:///z d3 ", calls[2])

	// a Mux can be nested in another
	outer := NewMux()
	outer.Add(m)
	assert.Equal(t, m.Schemes(), outer.Schemes())
}

func TestDefault(t *testing.T) {
	assert.Equal(t, []string{"file", "ftp", "http", "https"}, Default().Schemes())
}
