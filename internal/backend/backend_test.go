package backend

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"paybook/internal/config"
	"paybook/internal/core"
	"paybook/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := config.Default()
	app.DataBackend = "sqlite"
	app.SQLiteDBPath = "/tmp/x.db"
	app.AMQPURL = "amqp://localhost/"

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" || cfg.AMQPRoutingKey != "records" {
		t.Errorf("unexpected config %+v", cfg)
	}

	app.DataBackend = "sheets"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"file", Config{Type: FileBackend, DataFile: "x.json"}, false},
		{"file without path", Config{Type: FileBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "redis"}, true},
		{"amqp without routing key", Config{Type: MemoryBackend, AMQPURL: "amqp://x/", AMQPExchange: "e"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	want := []string{"file", "sqlite", "memory"}
	if got := GetBackendTypeStrings(); !reflect.DeepEqual(got, want) {
		t.Errorf("GetBackendTypeStrings() = %v, want %v", got, want)
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
		want   interface{}
	}{
		{"file", Config{Type: FileBackend, DataFile: filepath.Join(dir, "p.json")}, &storage.FileRepository{}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "p.db")}, &storage.SQLiteRepository{}},
		{"memory", Config{Type: MemoryBackend}, &storage.MemoryRepository{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Cleanup()

			if reflect.TypeOf(res.Persister) != reflect.TypeOf(tt.want) {
				t.Errorf("persister type = %T, want %T", res.Persister, tt.want)
			}
			if res.Notifier != nil {
				t.Error("notifier should be nil without AMQP")
			}
			snap := core.Snapshot{OvertimeRates: core.DefaultRates()}
			if err := res.Persister.Save(context.Background(), snap); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if _, found, err := res.Persister.Load(context.Background()); err != nil || !found {
				t.Fatalf("Load: found %v err %v", found, err)
			}
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "nope"}); err == nil {
		t.Fatal("expected error")
	}
}
