package natsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/snipr/internal/app/model"
	"go.uber.org/zap"
)

const flushTimeout = 3 * time.Second

// ShareTarget publishes shared links on a subject so other devices running
// `snipr listen` can pick them up.
type ShareTarget struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewShareTarget returns a share target publishing on subject. A nil conn yields a
// target that reports itself unavailable.
func NewShareTarget(conn *nats.Conn, subject string, logger *zap.Logger) *ShareTarget {
	if logger == nil {
		logger = zap.NewNop()
	}
	if subject == "" {
		subject = model.DefaultShareSubject
	}
	return &ShareTarget{conn: conn, subject: subject, logger: logger.Named("share")}
}

// Available reports whether the connection can currently deliver.
func (s *ShareTarget) Available() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Share publishes req and waits for the server to acknowledge the flush.
func (s *ShareTarget) Share(ctx context.Context, req model.ShareRequest) error {
	if !s.Available() {
		return errors.New("nats: share target not connected")
	}

	data, err := encodeShare(req)
	if err != nil {
		return err
	}

	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("nats: publish share: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats: flush share: %w", err)
	}

	s.logger.Debug("link shared", zap.String("subject", s.subject), zap.String("url", req.URL))
	return nil
}

func encodeShare(req model.ShareRequest) ([]byte, error) {
	if req.URL == "" {
		return nil, errors.New("nats: share request without url")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("nats: encode share: %w", err)
	}
	return data, nil
}

func decodeShare(data []byte) (model.ShareRequest, error) {
	var req model.ShareRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.ShareRequest{}, fmt.Errorf("nats: decode share: %w", err)
	}
	if req.URL == "" {
		return model.ShareRequest{}, errors.New("nats: share message without url")
	}
	return req, nil
}
