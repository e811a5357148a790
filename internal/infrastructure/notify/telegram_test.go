package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTelegramSend(t *testing.T) {
	var gotPath, gotChatID, gotText, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotChatID = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		gotMode = r.PostForm.Get("parse_mode")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "token123", "chat456")
	if !tg.Send(context.Background(), "<b>hello</b>") {
		t.Fatal("expected send to succeed")
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotChatID != "chat456" || gotText != "<b>hello</b>" || gotMode != "HTML" {
		t.Errorf("unexpected form: chat_id=%q text=%q parse_mode=%q", gotChatID, gotText, gotMode)
	}
}

func TestTelegramSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok": false, "description": "Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "token123", "chat456")
	if tg.Send(context.Background(), "hello") {
		t.Error("expected send to fail on api error")
	}
}

func TestTelegramSendUnconfigured(t *testing.T) {
	tg := NewTelegram("", "")
	if tg.Send(context.Background(), "hello") {
		t.Error("expected unconfigured notifier to report failure")
	}
}
