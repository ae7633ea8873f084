package precache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

func TestResponseToEntry(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		wantErr bool
	}{
		{
			name: "shell response with ETag",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"ETag":         []string{`"shell-v42"`},
					"Content-Type": []string{"text/html; charset=utf-8"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte("<html>shell</html>"))),
			},
			wantErr: false,
		},
		{
			name: "response without ETag",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Content-Type": []string{"text/html"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte("<html></html>"))),
			},
			wantErr: false,
		},
		{
			name:    "nil response",
			resp:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ResponseToEntry(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResponseToEntry() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if entry == nil {
				t.Fatal("ResponseToEntry() returned nil entry")
			}

			// Body was read and restored for the caller
			body, _ := io.ReadAll(tt.resp.Body)
			if len(body) == 0 {
				t.Error("response body was not restored")
			}
			if string(entry.Body) != string(body) {
				t.Errorf("entry body = %q, want %q", entry.Body, body)
			}

			if entry.StatusCode != tt.resp.StatusCode {
				t.Errorf("StatusCode = %v, want %v", entry.StatusCode, tt.resp.StatusCode)
			}
			if entry.ETag != tt.resp.Header.Get("ETag") {
				t.Errorf("ETag = %v, want %v", entry.ETag, tt.resp.Header.Get("ETag"))
			}
			if entry.StoredAt.IsZero() {
				t.Error("StoredAt was not set")
			}
		})
	}
}

func TestEntry_Response(t *testing.T) {
	entry := &Entry{
		Body:       []byte("<html>shell</html>"),
		ETag:       `"shell-v42"`,
		StatusCode: 200,
		Header: http.Header{
			"Content-Type": []string{"text/html; charset=utf-8"},
		},
	}

	resp := entry.Response()

	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("ETag"); got != `"shell-v42"` {
		t.Errorf("ETag header = %q, want %q", got, `"shell-v42"`)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<html>shell</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestEntry_Response_SingleUseBodies(t *testing.T) {
	entry := &Entry{Body: []byte("shell"), StatusCode: 200}

	first := entry.Response()
	io.ReadAll(first.Body)
	first.Body.Close()

	// A second materialization is unaffected by consuming the first.
	second := entry.Response()
	body, _ := io.ReadAll(second.Body)
	if string(body) != "shell" {
		t.Errorf("second response body = %q, want %q", body, "shell")
	}
}

func TestEntry_Response_Defaults(t *testing.T) {
	entry := &Entry{Body: []byte("x"), ETag: `"v1"`}

	resp := entry.Response()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("zero status should default to 200, got %d", resp.StatusCode)
	}
	// ETag is surfaced as a header even when the stored header set lacks it.
	if got := resp.Header.Get("ETag"); got != `"v1"` {
		t.Errorf("ETag header = %q, want %q", got, `"v1"`)
	}
}
