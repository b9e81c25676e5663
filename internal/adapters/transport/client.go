package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

const (
	dialTimeout         = 30 * time.Second
	keepAlive           = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// DialContextFunc matches net.Dialer.DialContext.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewHTTPClient builds a client that routes through proxyURL. An empty proxyURL uses the
// environment proxy settings.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: keepAlive,
		}).DialContext,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		switch u.Scheme {
		case "http", "https":
			tr.Proxy = http.ProxyURL(u)
		case "socks5":
			dial, err := socksDialer(u)
			if err != nil {
				return nil, err
			}
			tr.Proxy = nil
			tr.DialContext = dial
		default:
			return nil, fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}, nil
}

// NewDialer returns the raw TCP dialer used for messenger connections. Only socks5 proxies
// can carry those; an empty proxyURL dials directly.
func NewDialer(proxyURL string) (DialContextFunc, error) {
	direct := (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext
	if proxyURL == "" {
		return direct, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme != "socks5" {
		return nil, fmt.Errorf("messenger connections need a socks5 proxy, got %s", u.Scheme)
	}

	return socksDialer(u)
}

func socksDialer(u *url.URL) (DialContextFunc, error) {
	if u.Host == "" {
		return nil, errors.New("proxy host is required")
	}

	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{
			User:     u.User.Username(),
			Password: pass,
		}
	}

	forward := &net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}
	d, err := proxy.SOCKS5("tcp", u.Host, auth, forward)
	if err != nil {
		return nil, fmt.Errorf("build socks5 dialer: %w", err)
	}

	if contextDialer, ok := d.(proxy.ContextDialer); ok {
		return contextDialer.DialContext, nil
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// Pool shares one HTTP client per proxy URL.
type Pool struct {
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]*http.Client
}

func NewPool(timeout time.Duration) *Pool {
	return &Pool{timeout: timeout, clients: map[string]*http.Client{}}
}

func (p *Pool) Client(proxyURL string) (*http.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[proxyURL]; ok {
		return client, nil
	}

	client, err := NewHTTPClient(proxyURL, p.timeout)
	if err != nil {
		return nil, err
	}
	p.clients[proxyURL] = client
	return client, nil
}

// Close drops idle connections of every pooled client.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, client := range p.clients {
		client.CloseIdleConnections()
		delete(p.clients, key)
	}
	return nil
}
