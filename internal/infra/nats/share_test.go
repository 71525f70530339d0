package natsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/snipr/config"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	written []string
	err     error
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, text)
	return nil
}

func TestShareRoundTrip(t *testing.T) {
	req := model.ShareRequest{Title: model.DefaultShareTitle, Text: model.DefaultShareText, URL: "https://s.ly/abc"}

	data, err := encodeShare(req)
	require.NoError(t, err)

	got, err := decodeShare(data)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestEncodeShare_RequiresURL(t *testing.T) {
	_, err := encodeShare(model.ShareRequest{Title: "x"})
	assert.Error(t, err)
}

func TestShareTarget_UnavailableWithoutConnection(t *testing.T) {
	target := NewShareTarget(nil, "", nil)

	assert.False(t, target.Available())
	assert.Equal(t, model.DefaultShareSubject, target.subject)
	assert.Error(t, target.Share(context.Background(), model.ShareRequest{URL: "https://s.ly/abc"}))
}

func TestListener_HandleCopiesURL(t *testing.T) {
	clip := &fakeClipboard{}
	l := NewListener(nil, "team.links", clip, nil)

	var received []model.ShareRequest
	l.OnReceive = func(req model.ShareRequest, err error) {
		assert.NoError(t, err)
		received = append(received, req)
	}

	l.handle(&nats.Msg{Data: []byte(`{"title":"Shortened URL","text":"hi","url":"https://s.ly/abc"}`)})

	assert.Equal(t, []string{"https://s.ly/abc"}, clip.written)
	require.Len(t, received, 1)
	assert.Equal(t, "Shortened URL", received[0].Title)
}

func TestListener_HandleRejectsMalformed(t *testing.T) {
	clip := &fakeClipboard{}
	l := NewListener(nil, "", clip, nil)

	var errs []error
	l.OnReceive = func(_ model.ShareRequest, err error) { errs = append(errs, err) }

	l.handle(&nats.Msg{Data: []byte(`not json`)})
	l.handle(&nats.Msg{Data: []byte(`{"title":"no url"}`)})

	assert.Empty(t, clip.written)
	assert.Len(t, errs, 2)
}

func TestListener_HandleClipboardFailure(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	l := NewListener(nil, "", clip, nil)

	var got error
	l.OnReceive = func(_ model.ShareRequest, err error) { got = err }
	l.handle(&nats.Msg{Data: []byte(`{"url":"https://s.ly/abc"}`)})

	assert.EqualError(t, got, "no display")
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "nats://localhost:4222", buildURL(config.NATSConfig{}))
	assert.Equal(t, "nats://broker:4300", buildURL(config.NATSConfig{Host: "broker", Port: 4300}))
}
