package backend

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/inject"
	"github.com/Shea690901/TachyFont/tferr"
)

// HTTPService backs Service with net/http. No third-party HTTP client
// appears anywhere in the example pack this engine was grounded on, so
// the standard library is used here directly (see DESIGN.md).
type HTTPService struct {
	client *http.Client
	log    *logrus.Entry
}

// NewHTTPService wraps client (http.DefaultClient if nil).
func NewHTTPService(client *http.Client, log *logrus.Entry) *HTTPService {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &HTTPService{client: client, log: log}
}

func (s *HTTPService) RequestFontBase(ctx context.Context, info FontInfo) ([]byte, error) {
	u := fmt.Sprintf("%s/base?family=%s&weight=%s",
		strings.TrimRight(info.URLBase, "/"), url.QueryEscape(info.Family), url.QueryEscape(info.Weight))
	data, err := s.do(ctx, u, nil)
	if err != nil {
		return nil, tferr.Backend("requestFontBase", err)
	}
	return data, nil
}

func (s *HTTPService) RequestCodepoints(ctx context.Context, info FontInfo, codepoints []rune) (*inject.Bundle, error) {
	body := make([]byte, 4*len(codepoints))
	for i, cp := range codepoints {
		binary.BigEndian.PutUint32(body[i*4:], uint32(cp))
	}
	u := fmt.Sprintf("%s/codepoints?family=%s&weight=%s",
		strings.TrimRight(info.URLBase, "/"), url.QueryEscape(info.Family), url.QueryEscape(info.Weight))

	data, err := s.do(ctx, u, body)
	if err != nil {
		return nil, tferr.Backend("requestCodepoints", err)
	}

	bundle, err := inject.DecodeBundle(data)
	if err != nil {
		return nil, tferr.Backend("requestCodepoints: decoding bundle", err)
	}

	s.log.WithFields(logrus.Fields{
		"component":  "backend",
		"family":     info.Family,
		"codepoints": len(codepoints),
		"glyphs":     len(bundle.Records),
	}).Debug("fetched bundle")
	return bundle, nil
}

func (s *HTTPService) do(ctx context.Context, u string, body []byte) ([]byte, error) {
	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		method = http.MethodPost
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
	}
	return io.ReadAll(resp.Body)
}
