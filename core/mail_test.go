package core

import (
	"strings"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Enable(enabled bool)                   {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func TestParseEmailTemplates(t *testing.T) {
	conf := &Config{TestMode: true, FrontendBaseURL: "http://localhost:3000"}
	ParseEmailTemplates(conf, nopLogger{})

	// every template pairs with the underscore-prefixed base layouts,
	// so a successful render proves the layouts were embedded
	for _, name := range []string{"password-reset", "welcome"} {
		if _, ok := templates[name]; !ok {
			t.Fatalf("template %q not parsed", name)
		}
	}

	msg := &EmailMessage{
		TemplateName: "password-reset",
		TemplateData: struct{ Username, UID, Token string }{"hero", "dWlk", "tok123"},
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("Render() failed! err %v", err)
	}
	if !strings.Contains(msg.TextContent, "Hi hero,") {
		t.Errorf("TextContent missing greeting; got %q", msg.TextContent)
	}
	if !strings.Contains(msg.TextContent, "http://localhost:3000/password-reset/dWlk/tok123") {
		t.Errorf("TextContent missing reset link; got %q", msg.TextContent)
	}
	if msg.HTMLContent == "" {
		t.Error("HTMLContent is empty")
	}
}
