package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/config"
)

func writeKeyPair(t *testing.T) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	dir := t.TempDir()
	certFile = filepath.Join(dir, "tls.crt")
	keyFile = filepath.Join(dir, "tls.key")
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func resetTLSConfig(t *testing.T) {
	t.Cleanup(func() {
		config.TLSCertFile = ""
		config.TLSKeyFile = ""
		config.TLSCAFile = ""
		config.TraefikCerts = ""
		config.TraefikCertDomain = ""
	})
}

func TestNewTLSConfigDisabled(t *testing.T) {
	resetTLSConfig(t)
	cfg, err := newTLSConfig(context.Background(), log.Default())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestNewTLSConfigFromFiles(t *testing.T) {
	resetTLSConfig(t)
	config.TLSCertFile, config.TLSKeyFile = writeKeyPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newTLSConfig(ctx, log.Default())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinVersion)
	cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	assert.NotNil(t, cert)
}

func TestNewTLSConfigMissingFile(t *testing.T) {
	resetTLSConfig(t)
	config.TLSCertFile = filepath.Join(t.TempDir(), "missing.crt")
	config.TLSKeyFile = filepath.Join(t.TempDir(), "missing.key")
	_, err := newTLSConfig(context.Background(), log.Default())
	assert.Error(t, err)
}
