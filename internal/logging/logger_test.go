package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.InfoLevel,
		"loud":  logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFor_TagsModule(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "info")
	Init()

	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	defer Init()

	For("todos").Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"module":"todos"`) {
		t.Errorf("expected module field in %q", out)
	}
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected message in %q", out)
	}
}
