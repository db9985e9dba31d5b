package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestRemoteOpenGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zw := gzip.NewWriter(w)
		io.WriteString(zw, "<PATDOC/>")
		zw.Close()
	}))
	defer srv.Close()

	rc, err := NewRemote(srv.URL+"/pg030401.xml.gz", testClient(nil)).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "<PATDOC/>" {
		t.Fatalf("body = %q", body)
	}
}

func TestRemoteOpenErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := NewRemote(srv.URL+"/missing.xml", testClient(nil)).Open(context.Background()); err == nil {
		t.Fatal("Open must fail on 404")
	}
}
