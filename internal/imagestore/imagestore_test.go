package imagestore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gana36/billbeam/internal/extract"
)

type fakeS3 struct {
	mu          sync.Mutex
	path        string
	contentType string
	body        []byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.path = r.URL.Path
	f.contentType = r.Header.Get("Content-Type")
	f.body = body
	f.mu.Unlock()
	w.Header().Set("ETag", `"abc"`)
	w.WriteHeader(http.StatusOK)
}

func TestS3StorePut(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewS3Store(context.Background(), Config{
		Bucket:    "receipts-bucket",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}
	store.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	img := extract.Image{Data: []byte("\xff\xd8\xff\xe0fake-jpeg"), MIMEType: "image/jpeg"}
	key, err := store.Put(context.Background(), "user-1", img)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if !strings.HasPrefix(key, "receipts/user-1/2024-05-01/") || !strings.HasSuffix(key, ".jpg") {
		t.Errorf("unexpected key %q", key)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if want := "/receipts-bucket/" + key; fake.path != want {
		t.Errorf("path = %q, want %q", fake.path, want)
	}
	if fake.contentType != "image/jpeg" {
		t.Errorf("content type = %q", fake.contentType)
	}
	if string(fake.body) != string(img.Data) {
		t.Errorf("body = %q", fake.body)
	}
}

func TestObjectKeyAnonymous(t *testing.T) {
	key := objectKey("", time.Unix(0, 0), extract.Image{MIMEType: "image/png"})
	if !strings.HasPrefix(key, "receipts/anonymous/1970-01-01/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}
}
