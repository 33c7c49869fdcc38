package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/wardrobe/log"
)

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Debug("pass started", log.Fields{"entries": 4})
	l.Error("composition failed", log.Fields{"entry": "5"})

	if n := len(hook.AllEntries()); n != 2 {
		t.Fatalf("got %d entries want 2", n)
	}
	last := hook.LastEntry()
	if last.Level != logrus.ErrorLevel || last.Message != "composition failed" || last.Data["entry"] != "5" {
		t.Fatalf("last=%+v", last)
	}
}
