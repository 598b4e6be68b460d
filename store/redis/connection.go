package redis

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	resqueErrors "github.com/aaronvb/coffee-resque/errors"
	"github.com/gomodule/redigo/redis"
)

var (
	// ErrInvalidScheme is returned when the Redis URI scheme is invalid
	ErrInvalidScheme = errors.New("invalid Redis database URI scheme")
)

// CreatePool creates a Redis connection pool using the provided options
func CreatePool(options Options) *redis.Pool {
	return &redis.Pool{
		MaxActive:   options.MaxConnections,
		MaxIdle:     options.MaxIdle,
		IdleTimeout: options.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			return Dial(options)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// Dial establishes a Redis connection using the provided options
func Dial(options Options) (redis.Conn, error) {
	uri, err := url.Parse(options.URI)
	if err != nil {
		return nil, resqueErrors.NewConnectionError(options.URI,
			fmt.Errorf("invalid URI: %w", err))
	}

	var network string
	var host string
	var password string
	var db string
	var dialOptions []redis.DialOption

	// Configure timeouts
	dialOptions = append(dialOptions,
		redis.DialConnectTimeout(options.ConnectTimeout),
		redis.DialReadTimeout(options.ReadTimeout),
		redis.DialWriteTimeout(options.WriteTimeout),
	)

	switch uri.Scheme {
	case "redis", "rediss":
		network = "tcp"
		host = uri.Host
		if uri.User != nil {
			password, _ = uri.User.Password()
		}
		if len(uri.Path) > 1 {
			db = uri.Path[1:]
		}

		// Configure TLS for rediss or if explicitly enabled
		if uri.Scheme == "rediss" || options.UseTLS {
			tlsConfig := &tls.Config{
				InsecureSkipVerify: options.TLSSkipVerify,
			}

			if options.TLSCertPath != "" {
				pool, err := LoadCertPool(options.TLSCertPath)
				if err != nil {
					return nil, err
				}
				tlsConfig.RootCAs = pool
			}

			dialOptions = append(dialOptions,
				redis.DialUseTLS(true),
				redis.DialTLSConfig(tlsConfig),
			)
		}
	case "unix":
		network = "unix"
		host = uri.Path
	default:
		return nil, resqueErrors.NewConnectionError(options.URI, ErrInvalidScheme)
	}

	// Establish connection
	conn, err := redis.Dial(network, host, dialOptions...)
	if err != nil {
		return nil, resqueErrors.NewConnectionError(options.URI,
			fmt.Errorf("failed to connect: %w", err))
	}

	// Authenticate if password provided
	if password != "" {
		if _, err := conn.Do("AUTH", password); err != nil {
			conn.Close()
			return nil, resqueErrors.NewConnectionError(options.URI,
				fmt.Errorf("authentication failed: %w", err))
		}
	}

	// Select database if specified
	if db != "" {
		if _, err := conn.Do("SELECT", db); err != nil {
			conn.Close()
			return nil, resqueErrors.NewConnectionError(options.URI,
				fmt.Errorf("failed to select database: %w", err))
		}
	}

	return conn, nil
}

// LoadCertPool loads a certificate pool from a file
func LoadCertPool(certPath string) (*x509.CertPool, error) {
	rootCAs, _ := x509.SystemCertPool()
	if rootCAs == nil {
		rootCAs = x509.NewCertPool()
	}

	certs, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cert file %q: %w", certPath, err)
	}

	if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
		return nil, fmt.Errorf("failed to append certs from %q", certPath)
	}

	return rootCAs, nil
}
