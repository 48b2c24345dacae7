// Package whatsapp builds click-to-chat links and QR codes for stored numbers.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"phonebook_backend/platform/phone"

	"github.com/skip2/go-qrcode"
)

const (
	defaultBaseURL = "https://wa.me"
	defaultQRSize  = 256
	maxQRSize      = 1024
)

type Client struct {
	baseURL string
	qrSize  int
}

// NewClient returns a client for baseURL. An empty baseURL means wa.me.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		qrSize:  defaultQRSize,
	}
}

// Link returns the chat link for a normalized number, with an optional
// prefilled message. Numbers that are not canonical yield "".
func (c *Client) Link(normalized, message string) string {
	if c == nil || !phone.IsCanonical(normalized) {
		return ""
	}

	link := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimPrefix(normalized, "+"))
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

// QRCode renders the chat link of a normalized number as a PNG. size is the
// edge in pixels; zero picks the default.
func (c *Client) QRCode(normalized string, size int) ([]byte, error) {
	link := c.Link(normalized, "")
	if link == "" {
		return nil, fmt.Errorf("cannot build whatsapp link for %q", normalized)
	}

	if size <= 0 {
		size = c.qrSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode whatsapp qr: %w", err)
	}
	return png, nil
}
