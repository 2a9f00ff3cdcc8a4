// Package natsbus distributes analyses via NATS.
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/source"
)

const (
	SubjectPrefix  = "racepace.analysis"
	RefreshSubject = "racepace.refresh"
)

type (
	Refresher interface {
		Refresh(ctx context.Context, sessionKey int) (*model.SessionAnalysis, error)
	}
	Bus struct {
		ctx      context.Context
		conn     *nats.Conn
		l        *log.Logger
		bucket   string
		kv       jetstream.KeyValue
		refresh  Refresher
		subFresh *nats.Subscription
	}
	Option func(*Bus)
)

func WithContext(ctx context.Context) Option {
	return func(b *Bus) {
		b.ctx = ctx
	}
}

func WithLogger(l *log.Logger) Option {
	return func(b *Bus) {
		b.l = l
	}
}

// WithKeyValue keeps the latest analysis per session in a JetStream
// key value bucket.
func WithKeyValue(bucket string) Option {
	return func(b *Bus) {
		b.bucket = bucket
	}
}

// WithRefresher answers refresh requests on RefreshSubject.
func WithRefresher(r Refresher) Option {
	return func(b *Bus) {
		b.refresh = r
	}
}

func New(conn *nats.Conn, opts ...Option) (*Bus, error) {
	ret := &Bus{
		ctx:  context.Background(),
		conn: conn,
		l:    log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.bucket != "" {
		if err := ret.setupKV(); err != nil {
			return nil, err
		}
	}
	if ret.refresh != nil {
		sub, err := conn.Subscribe(RefreshSubject, ret.handleRefresh)
		if err != nil {
			return nil, err
		}
		ret.subFresh = sub
	}
	return ret, nil
}

// AnalysisSubject is the subject analyses of sessionKey are published on.
func AnalysisSubject(sessionKey int) string {
	return fmt.Sprintf("%s.%d", SubjectPrefix, sessionKey)
}

// Publish sends a as JSON to its session subject.
func (b *Bus) Publish(ctx context.Context, a *model.SessionAnalysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(AnalysisSubject(a.SessionKey), data); err != nil {
		return err
	}
	if b.kv != nil {
		if _, err := b.kv.Put(ctx, strconv.Itoa(a.SessionKey), data); err != nil {
			return fmt.Errorf("kv put: %w", err)
		}
	}
	return nil
}

// Latest returns the last published analysis of a session.
// Requires WithKeyValue.
func (b *Bus) Latest(ctx context.Context, sessionKey int) (*model.SessionAnalysis, error) {
	if b.kv == nil {
		return nil, errors.New("no key value bucket configured")
	}
	entry, err := b.kv.Get(ctx, strconv.Itoa(sessionKey))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, fmt.Errorf("analysis %d: %w", sessionKey, source.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var ret model.SessionAnalysis
	if err := json.Unmarshal(entry.Value(), &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// RequestRefresh asks the analyzing services to recompute a session.
func (b *Bus) RequestRefresh(sessionKey int) error {
	return b.conn.Publish(RefreshSubject, []byte(strconv.Itoa(sessionKey)))
}

func (b *Bus) Close() {
	if b.subFresh != nil {
		if err := b.subFresh.Unsubscribe(); err != nil {
			b.l.Warn("could not unsubscribe", log.ErrorField(err))
		}
	}
}

func (b *Bus) setupKV() error {
	js, err := jetstream.New(b.conn)
	if err != nil {
		return err
	}
	b.kv, err = js.CreateOrUpdateKeyValue(b.ctx, jetstream.KeyValueConfig{
		Bucket:      b.bucket,
		Description: "latest analysis per session",
		History:     1,
	})
	return err
}

func (b *Bus) handleRefresh(msg *nats.Msg) {
	key, err := ParseSessionKey(msg.Data)
	if err != nil {
		b.l.Warn("invalid refresh request", log.String("data", string(msg.Data)))
		b.reply(msg, err.Error())
		return
	}
	b.l.Info("Refresh requested", log.Int("sessionKey", key))
	if _, err := b.refresh.Refresh(b.ctx, key); err != nil {
		b.l.Error("refresh failed", log.Int("sessionKey", key), log.ErrorField(err))
		b.reply(msg, err.Error())
		return
	}
	b.reply(msg, "ok")
}

func (b *Bus) reply(msg *nats.Msg, text string) {
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond([]byte(text)); err != nil {
		b.l.Warn("could not respond", log.ErrorField(err))
	}
}

// ParseSessionKey accepts a plain number or {"sessionKey": n}.
func ParseSessionKey(data []byte) (int, error) {
	text := strings.TrimSpace(string(data))
	if key, err := strconv.Atoi(text); err == nil {
		return key, nil
	}
	var req struct {
		SessionKey int `json:"sessionKey"`
	}
	if err := json.Unmarshal([]byte(text), &req); err != nil || req.SessionKey <= 0 {
		return 0, fmt.Errorf("invalid session key %q", text)
	}
	return req.SessionKey, nil
}
