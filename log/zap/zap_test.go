package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/wardrobe/log"
)

func TestZapLoggerFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("fetch ready", log.Fields{"name": "hair_a", "elapsed_ms": 3})
	l.Warn("fetch failed", log.Fields{"name": "hair_b", "err": errors.New("404")})
	l.Info("no fields", nil)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d entries want 3", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["name"] != "hair_a" {
		t.Fatalf("entry 0=%+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["err"] != "404" {
		t.Fatalf("entry 1 context=%v", entries[1].ContextMap())
	}
	if len(entries[2].Context) != 0 {
		t.Fatalf("unexpected fields %v", entries[2].Context)
	}
}
