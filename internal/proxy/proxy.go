package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// ErrEmptyPool is returned when a rotator is built without proxies.
var ErrEmptyPool = errors.New("config error: proxy pool is empty")

type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Country  string `toml:"country"`
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the proxy URL including credentials. Do not log it.
func (c Config) URL() string {
	u := url.URL{Scheme: "http", Host: c.Address()}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}

func (c Config) String() string {
	if c.Username == "" {
		return c.Address()
	}
	return c.Username + ":***@" + c.Address()
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", c.Host),
		slog.Int("port", c.Port),
		slog.String("country", c.Country),
	)
}

// Rotator hands out proxies from a fixed pool in round-robin order.
// It is safe for concurrent use.
type Rotator struct {
	mu        sync.Mutex
	pool      []Config
	cursor    int
	rotations int
}

func NewRotator(pool []Config) (*Rotator, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	cp := make([]Config, len(pool))
	copy(cp, pool)
	return &Rotator{pool: cp}, nil
}

// Next returns the proxy under the cursor and advances it.
func (r *Rotator) Next() Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.pool[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.pool)
	r.rotations++
	return p
}

// Rotate skips the proxy under the cursor so the following Next hands out a
// different exit. It is used after rate-limit and captcha responses.
func (r *Rotator) Rotate() {
	r.mu.Lock()
	r.cursor = (r.cursor + 1) % len(r.pool)
	r.rotations++
	r.mu.Unlock()
}

// Random returns a uniformly chosen proxy without moving the cursor.
func (r *Rotator) Random() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool[rand.IntN(len(r.pool))]
}

// Rotations counts cursor advances since construction.
func (r *Rotator) Rotations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotations
}

func (r *Rotator) Len() int {
	return len(r.pool)
}

type poolFile struct {
	Proxies []Config `toml:"proxy"`
}

// LoadFile reads a TOML pool made of [[proxy]] tables.
func LoadFile(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading proxy file: %w", err)
	}

	var pf poolFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing proxy file %s: %w", path, err)
	}

	for i, p := range pf.Proxies {
		if p.Host == "" || p.Port <= 0 || p.Port > 65535 {
			return nil, fmt.Errorf("proxy %d in %s: host and a valid port are required", i+1, path)
		}
	}
	return pf.Proxies, nil
}
