package util

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var allowedImages = []string{"image/jpeg", "image/png", "image/webp"}

func TestReadImageDetectsType(t *testing.T) {
	data := encodePNG(t, 4, 4)
	img, err := ReadImage(bytes.NewReader(data), "photo.jpg", 1<<20, allowedImages)
	if err != nil {
		t.Fatal(err)
	}
	if img.MimeType != "image/png" || img.Ext != ".png" {
		t.Fatalf("detected %s %s, want image/png .png", img.MimeType, img.Ext)
	}
}

func TestReadImageRejectsLargeFile(t *testing.T) {
	data := encodePNG(t, 64, 64)
	_, err := ReadImage(bytes.NewReader(data), "", int64(len(data)-1), allowedImages)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestReadImageRejectsNonImage(t *testing.T) {
	_, err := ReadImage(bytes.NewReader([]byte("%PDF-1.4 not an image")), "a.png", 1<<20, allowedImages)
	if !errors.Is(err, ErrFileNotSupported) {
		t.Fatalf("expected ErrFileNotSupported, got %v", err)
	}
	_, err = ReadImage(bytes.NewReader(nil), "a.png", 1<<20, allowedImages)
	if !errors.Is(err, ErrFileNotSupported) {
		t.Fatalf("expected ErrFileNotSupported for empty body, got %v", err)
	}
}

func TestReadImageAllowList(t *testing.T) {
	data := encodePNG(t, 2, 2)
	_, err := ReadImage(bytes.NewReader(data), "", 1<<20, []string{"image/jpeg"})
	if !errors.Is(err, ErrFileNotSupported) {
		t.Fatalf("expected ErrFileNotSupported, got %v", err)
	}
}

func TestDownscaleImage(t *testing.T) {
	src := &UploadedImage{Data: encodePNG(t, 200, 100), MimeType: "image/png", Ext: ".png"}

	small, err := DownscaleImage(src, 400)
	if err != nil {
		t.Fatal(err)
	}
	if small != src {
		t.Fatal("image within bounds should be returned as is")
	}

	out, err := DownscaleImage(src, 50)
	if err != nil {
		t.Fatal(err)
	}
	if out.MimeType != "image/jpeg" || out.Ext != ".jpg" {
		t.Fatalf("unexpected output type %s %s", out.MimeType, out.Ext)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Fatalf("size = %dx%d, want 50x25", cfg.Width, cfg.Height)
	}
}

func TestFetchImageRejectsScheme(t *testing.T) {
	_, err := FetchImage(t.Context(), "ftp://example.com/a.png", 1<<20, allowedImages)
	if !errors.Is(err, ErrImageFetch) {
		t.Fatalf("expected ErrImageFetch, got %v", err)
	}
}

func TestFetchImageBlocksInternalAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "secret", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := FetchImage(t.Context(), srv.URL+"/admin/secret", 1<<20, allowedImages)
	if !errors.Is(err, ErrImageFetch) {
		t.Fatalf("expected ErrImageFetch, got %v", err)
	}
	if err.Error() != ErrImageFetch.Error() {
		t.Fatalf("error leaks upstream detail: %q", err.Error())
	}
	if hits.Load() != 0 {
		t.Fatalf("internal server was contacted %d times", hits.Load())
	}
}

func TestFetchImageDownloads(t *testing.T) {
	data := encodePNG(t, 3, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()
	client := resty.New()

	img, err := fetchImage(t.Context(), client, srv.URL+"/a.png", 1<<20, allowedImages)
	if err != nil {
		t.Fatal(err)
	}
	if img.MimeType != "image/png" || !bytes.Equal(img.Data, data) {
		t.Fatalf("unexpected image %s (%d bytes)", img.MimeType, len(img.Data))
	}

	_, err = fetchImage(t.Context(), client, srv.URL+"/missing.png", 1<<20, allowedImages)
	if !errors.Is(err, ErrImageFetch) || err.Error() != ErrImageFetch.Error() {
		t.Fatalf("expected bare ErrImageFetch, got %v", err)
	}

	_, err = fetchImage(t.Context(), client, srv.URL+"/a.png", 10, allowedImages)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestIsPublicAddr(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fc00::1", false},
		{"0.0.0.0", false},
		{"::", false},
		{"100.64.0.1", false},
		{"::ffff:127.0.0.1", false},
		{"224.0.0.1", false},
	}
	for _, tc := range cases {
		if got := IsPublicAddr(netip.MustParseAddr(tc.addr)); got != tc.want {
			t.Errorf("IsPublicAddr(%s) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}
