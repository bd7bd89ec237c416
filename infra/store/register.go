package store

import (
	"context"
	"time"

	"github.com/kilianp07/pvcompare/core/factory"
	corestore "github.com/kilianp07/pvcompare/core/store"
)

func init() {
	_ = corestore.Register("csv", func(conf map[string]any) (corestore.SeriesStore, error) {
		var c struct {
			Dir string `json:"dir"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewDirStore(c.Dir)
	})

	_ = corestore.Register("sqlite", func(conf map[string]any) (corestore.SeriesStore, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "pvcompare.db"
		}
		return NewSQLiteStore(c.Path)
	})

	_ = corestore.Register("valkey", func(conf map[string]any) (corestore.SeriesStore, error) {
		var c struct {
			Addr        string        `json:"addr"`
			Prefix      string        `json:"prefix"`
			DialTimeout time.Duration `json:"dial_timeout"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.DialTimeout <= 0 {
			c.DialTimeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.DialTimeout)
		defer cancel()
		client, err := DialValkey(ctx, c.Addr)
		if err != nil {
			return nil, err
		}
		return NewValkeyStore(client, c.Prefix), nil
	})

	_ = corestore.Register("s3", func(conf map[string]any) (corestore.SeriesStore, error) {
		var c S3Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewS3Store(c)
	})
}
