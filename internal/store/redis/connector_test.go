package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/config"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
)

func validOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "127.0.0.1:1",
		ConnectTimeout: 50 * time.Millisecond,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    10 * time.Millisecond,
		DialTimeout:    10 * time.Millisecond,
	}
}

func TestConnectOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectOptions)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ConnectOptions) {}},
		{name: "missing addr", mutate: func(o *ConnectOptions) { o.Addr = "" }, wantErr: true},
		{name: "zero connect timeout", mutate: func(o *ConnectOptions) { o.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero retry interval", mutate: func(o *ConnectOptions) { o.RetryInterval = 0 }, wantErr: true},
		{name: "zero max wait", mutate: func(o *ConnectOptions) { o.MaxWait = 0 }, wantErr: true},
		{name: "zero ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }, wantErr: true},
		{name: "negative warn threshold", mutate: func(o *ConnectOptions) { o.WarnThreshold = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(&opts)
			err := opts.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextWait(t *testing.T) {
	if got := nextWait(2*time.Second, 10*time.Second); got != 4*time.Second {
		t.Errorf("nextWait(2s) = %v, want 4s", got)
	}
	if got := nextWait(8*time.Second, 10*time.Second); got != 10*time.Second {
		t.Errorf("nextWait(8s) = %v, want the 10s cap", got)
	}
}

func TestConnectGivesUp(t *testing.T) {
	_, err := Connect(context.Background(), validOptions(), logger.NewNop())
	if err == nil {
		t.Fatal("Connect() to a closed port should fail")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{RedisAddr: "redis:6379", RedisDB: 2, RedisPoolSize: 7}
	opts := OptionsFromConfig(cfg)
	if opts.Addr != "redis:6379" || opts.DB != 2 || opts.PoolSize != 7 {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
}

func TestSlotKey(t *testing.T) {
	key := SlotKey("manaforge_decks")
	if key != "manaforge:slot:manaforge_decks" {
		t.Errorf("SlotKey() = %q", key)
	}
	name, err := SlotName(key)
	if err != nil || name != "manaforge_decks" {
		t.Errorf("SlotName(%q) = %q, %v", key, name, err)
	}
	if _, err := SlotName("manaforge:slot:"); err == nil {
		t.Error("SlotName() of a bare prefix should fail")
	}
	if _, err := SlotName("other:key"); err == nil {
		t.Error("SlotName() of a foreign key should fail")
	}
}
