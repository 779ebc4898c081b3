package observability

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type note struct {
	ID   uint
	Body string
}

func TestInstrumentDB_RecordsQuerySpansWithoutVariables(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "trace.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := InstrumentDB(db, tp); err != nil {
		t.Fatalf("InstrumentDB: %v", err)
	}

	ctx, parent := tp.Tracer("test").Start(context.Background(), "request")
	if err := db.WithContext(ctx).Create(&note{Body: "top-secret-text"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got note
	if err := db.WithContext(ctx).First(&got).Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	parent.End()

	var dbSpans int
	for _, s := range sr.Ended() {
		if s.Name() == "request" {
			continue
		}
		dbSpans++
		if s.Parent().SpanID() != parent.SpanContext().SpanID() {
			t.Fatalf("span %q is not a child of the request span", s.Name())
		}
		for _, kv := range s.Attributes() {
			if strings.Contains(kv.Value.Emit(), "top-secret-text") {
				t.Fatalf("span %q leaked a bound variable in %s", s.Name(), kv.Key)
			}
		}
	}
	if dbSpans < 2 {
		t.Fatalf("expected spans for insert and select, got %d", dbSpans)
	}
}

func TestInstrumentDB_TwiceFails(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "twice.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := InstrumentDB(db, nil); err != nil {
		t.Fatalf("first InstrumentDB: %v", err)
	}
	if err := InstrumentDB(db, nil); err == nil {
		t.Fatalf("registering the plugin twice should fail")
	}
}
