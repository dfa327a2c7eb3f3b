package util

import (
	"InstaCap/internal/pkg/logger"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	log "log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrFileNotSupported = errors.New("unsupported file type")
	ErrImageFetch       = errors.New("failed to fetch image")
)

// UploadedImage 通过校验的图片
type UploadedImage struct {
	Data     []byte
	MimeType string
	Ext      string
	Filename string
}

// ReadImage 读取并校验大小与真实类型
func ReadImage(r io.Reader, filename string, maxSize int64, allowed []string) (*UploadedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrFileNotSupported
	}

	mime := mimetype.Detect(data)
	if !mimeAllowed(mime, allowed) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotSupported, mime.String())
	}

	return &UploadedImage{
		Data:     data,
		MimeType: baseMime(mime.String()),
		Ext:      mime.Extension(),
		Filename: filename,
	}, nil
}

func mimeAllowed(mime *mimetype.MIME, allowed []string) bool {
	if !strings.HasPrefix(mime.String(), "image/") {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if mime.Is(a) {
			return true
		}
	}
	return false
}

func baseMime(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		return m[:i]
	}
	return m
}

var imageHTTP = resty.New().
	SetTransport(&logger.HTTPTransport{Name: "image", Transport: publicOnlyTransport(), Slow: 3 * time.Second}).
	SetTimeout(10 * time.Second).
	SetRedirectPolicy(resty.FlexibleRedirectPolicy(3))

var errBlockedAddress = errors.New("destination address is not allowed")

// publicOnlyTransport 每次建连都校验解析后的 IP，重定向同样生效
func publicOnlyTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			ip, err := netip.ParseAddr(host)
			if err != nil || !IsPublicAddr(ip) {
				return fmt.Errorf("%w: %s", errBlockedAddress, host)
			}
			return nil
		},
	}
	return &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       60 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
}

// 运营商级 NAT 与基准测试网段
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("198.18.0.0/15"),
}

// IsPublicAddr 排除回环、内网、链路本地与未指定地址
func IsPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !ip.IsValid() || ip.IsUnspecified() || ip.IsLoopback() || ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return false
	}
	for _, p := range nonPublicPrefixes {
		if p.Contains(ip) {
			return false
		}
	}
	return true
}

// FetchImage 下载远程图片，同样受大小与类型限制；只允许公网地址
func FetchImage(ctx context.Context, url string, maxSize int64, allowed []string) (*UploadedImage, error) {
	return fetchImage(ctx, imageHTTP, url, maxSize, allowed)
}

func fetchImage(ctx context.Context, client *resty.Client, url string, maxSize int64, allowed []string) (*UploadedImage, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, ErrImageFetch
	}

	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		log.WarnContext(ctx, "image fetch failed", "url", url, "err", err)
		return nil, ErrImageFetch
	}
	body := resp.RawBody()
	defer func() {
		_ = body.Close()
	}()

	if resp.StatusCode() != http.StatusOK {
		log.WarnContext(ctx, "image fetch failed", "url", url, "status", resp.StatusCode())
		return nil, ErrImageFetch
	}
	if resp.RawResponse.ContentLength > maxSize {
		return nil, ErrFileTooLarge
	}
	return ReadImage(body, "", maxSize, allowed)
}

// DownscaleImage 长边超过 maxSide 时等比缩小并转成 JPEG
func DownscaleImage(img *UploadedImage, maxSide int) (*UploadedImage, error) {
	if maxSide <= 0 {
		return img, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= maxSide && cfg.Height <= maxSide {
		return img, nil
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	dst := imaging.Fit(src, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return &UploadedImage{
		Data:     buf.Bytes(),
		MimeType: "image/jpeg",
		Ext:      ".jpg",
		Filename: img.Filename,
	}, nil
}
