package telegram

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// uploadedFile is one multipart file part received by the fake API.
type uploadedFile struct {
	filename string
	data     []byte
}

// apiRequest is one recorded Bot API call.
type apiRequest struct {
	method string
	params url.Values
	files  map[string]uploadedFile
}

// fakeTelegram speaks just enough of the Bot API for the client
// library: it answers getMe, records every other call and returns
// canned results.
type fakeTelegram struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []apiRequest
	failures map[string]apiFailure
	nextID   int
}

type apiFailure struct {
	code        int
	description string
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *tgbotapi.BotAPI) {
	t.Helper()

	f := &fakeTelegram{
		t:        t,
		failures: make(map[string]apiFailure),
		nextID:   1000,
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", f.server.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("NewBotAPIWithAPIEndpoint failed: %v", err)
	}
	return f, api
}

func (f *fakeTelegram) handle(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	req := apiRequest{method: method, files: make(map[string]uploadedFile)}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			f.t.Errorf("parse multipart form: %v", err)
			return
		}
		req.params = url.Values(r.MultipartForm.Value)
		for name, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			part, err := headers[0].Open()
			if err != nil {
				f.t.Errorf("open file part %s: %v", name, err)
				continue
			}
			data, _ := io.ReadAll(part)
			part.Close()
			req.files[name] = uploadedFile{filename: headers[0].Filename, data: data}
		}
	} else {
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parse form: %v", err)
			return
		}
		req.params = r.PostForm
	}

	f.mu.Lock()
	if method != "getMe" {
		f.requests = append(f.requests, req)
	}
	failure, failed := f.failures[method]
	id := f.nextID
	f.nextID++
	f.mu.Unlock()

	if failed {
		writeJSON(w, map[string]any{
			"ok":          false,
			"error_code":  failure.code,
			"description": failure.description,
		})
		return
	}

	chatID, _ := strconv.ParseInt(req.params.Get("chat_id"), 10, 64)
	message := map[string]any{
		"message_id": id,
		"chat":       map[string]any{"id": chatID, "type": "private"},
	}

	switch method {
	case "getMe":
		writeJSON(w, map[string]any{"ok": true, "result": map[string]any{
			"id":         1,
			"is_bot":     true,
			"first_name": "xcourier",
			"username":   "xcourier_bot",
		}})
	case "sendMediaGroup":
		writeJSON(w, map[string]any{"ok": true, "result": []any{message}})
	case "deleteMessage", "setMyCommands", "leaveChat":
		writeJSON(w, map[string]any{"ok": true, "result": true})
	case "getUpdates":
		writeJSON(w, map[string]any{"ok": true, "result": []any{}})
	default:
		// sendMessage, sendVideo, sendAnimation, sendDocument
		writeJSON(w, map[string]any{"ok": true, "result": message})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// failWith makes one API method answer with an error response.
func (f *fakeTelegram) failWith(method string, code int, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = apiFailure{code: code, description: description}
}

// requestsFor returns all recorded calls of one method.
func (f *fakeTelegram) requestsFor(method string) []apiRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiRequest
	for _, req := range f.requests {
		if req.method == method {
			out = append(out, req)
		}
	}
	return out
}

// requestCount returns how many calls were recorded in total.
func (f *fakeTelegram) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
