package natsclient

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/snipr/internal/app/model"
	"go.uber.org/zap"
)

const listenBuffer = 64

// TextWriter is the part of the clipboard the listener needs.
type TextWriter interface {
	WriteText(text string) error
}

// Listener receives shared links and places them on the local clipboard.
type Listener struct {
	conn      *nats.Conn
	subject   string
	clipboard TextWriter
	logger    *zap.Logger

	// OnReceive, when set, is called after each link is handled.
	OnReceive func(req model.ShareRequest, err error)
}

func NewListener(conn *nats.Conn, subject string, clipboard TextWriter, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	if subject == "" {
		subject = model.DefaultShareSubject
	}
	return &Listener{conn: conn, subject: subject, clipboard: clipboard, logger: logger.Named("listen")}
}

// Run subscribes and blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	msgs := make(chan *nats.Msg, listenBuffer)
	sub, err := l.conn.ChanSubscribe(l.subject, msgs)
	if err != nil {
		return fmt.Errorf("nats: subscribe %s: %w", l.subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			l.logger.Warn("failed to unsubscribe", zap.Error(err))
		}
	}()

	l.logger.Info("listening for shared links", zap.String("subject", l.subject))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgs:
			l.handle(msg)
		}
	}
}

func (l *Listener) handle(msg *nats.Msg) {
	req, err := decodeShare(msg.Data)
	if err != nil {
		l.logger.Warn("dropping share message", zap.Error(err))
		l.notify(req, err)
		return
	}

	if err := l.clipboard.WriteText(req.URL); err != nil {
		l.logger.Error("failed to copy shared link", zap.String("url", req.URL), zap.Error(err))
		l.notify(req, err)
		return
	}

	l.logger.Info("shared link copied", zap.String("url", req.URL), zap.String("title", req.Title))
	l.notify(req, nil)
}

func (l *Listener) notify(req model.ShareRequest, err error) {
	if l.OnReceive != nil {
		l.OnReceive(req, err)
	}
}
