package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/config"
	"github.com/mpapenbr/racepace/pkg/utils/certs/traefik"
)

type certProvider struct {
	l    *log.Logger
	mu   sync.RWMutex
	cert *tls.Certificate
}

// newTLSConfig returns nil if no certificate is configured. The certificate
// is reloaded whenever one of its files changes until ctx is done.
func newTLSConfig(ctx context.Context, l *log.Logger) (*tls.Config, error) {
	files := certFiles()
	if len(files) == 0 {
		return nil, nil
	}
	c := &certProvider{l: l.Named("certs")}
	if err := c.load(); err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.cert, nil
		},
		MinVersion: tls.VersionTLS13,
	}
	if config.TLSCAFile != "" {
		c.l.Info("Loading ca cert", log.String("file", config.TLSCAFile))
		caCert, err := os.ReadFile(config.TLSCAFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("no certificates found in ca file")
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			c.l.Warn("could not watch file", log.String("file", f), log.ErrorField(err))
		}
	}
	go c.watch(ctx, watcher)
	return cfg, nil
}

func certFiles() []string {
	if config.TraefikCerts != "" && config.TraefikCertDomain != "" {
		return []string{config.TraefikCerts}
	}
	if config.TLSCertFile != "" && config.TLSKeyFile != "" {
		return []string{config.TLSCertFile, config.TLSKeyFile}
	}
	return nil
}

func (c *certProvider) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
				c.l.Info("cert file changed, reloading", log.String("file", event.Name))
				if err := c.load(); err != nil {
					// keep serving the previous certificate
					c.l.Error("could not reload cert", log.ErrorField(err))
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.l.Error("watcher error", log.ErrorField(err))
		}
	}
}

func (c *certProvider) load() error {
	var cert tls.Certificate
	var err error
	if config.TraefikCerts != "" && config.TraefikCertDomain != "" {
		c.l.Info("Looking up traefik certs",
			log.String("file", config.TraefikCerts),
			log.String("domain", config.TraefikCertDomain))
		cert, err = traefik.LoadCertificate(config.TraefikCerts, config.TraefikCertDomain)
	} else {
		c.l.Info("Loading cert",
			log.String("key", config.TLSKeyFile),
			log.String("cert", config.TLSCertFile))
		cert, err = tls.LoadX509KeyPair(config.TLSCertFile, config.TLSKeyFile)
	}
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cert = &cert
	return nil
}
