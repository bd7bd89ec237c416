package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/pkg/export"
)

// ValkeyStore persists yield series using a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore wraps client. Keys are "<prefix>:series:<key>" and never
// expire.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "pvcompare"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// DialValkey connects to addr, either host:port or a redis:// URL, and
// pings the server.
func DialValkey(ctx context.Context, addr string) (valkey.Client, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, err
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	return client, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key model.SeriesKey) (model.YieldSeries, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return model.YieldSeries{}, false, nil
		}
		return model.YieldSeries{}, false, err
	}
	series, err := export.ReadJSON(strings.NewReader(payload))
	if err != nil {
		return model.YieldSeries{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return series, true, nil
}

func (s *ValkeyStore) Put(ctx context.Context, series model.YieldSeries) error {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, series); err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.entryKey(series.Key)).Value(buf.String()).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}

func (s *ValkeyStore) entryKey(k model.SeriesKey) string {
	return fmt.Sprintf("%s:series:%s", s.prefix, k)
}
