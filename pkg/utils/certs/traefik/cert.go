// Package traefik reads certificates from a traefik acme storage file.
package traefik

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var ErrDomainNotFound = errors.New("domain not found")

type acmeEntry struct {
	Certificate string `json:"certificate"`
	Key         string `json:"key"`
}

// LoadCertificate returns the key pair stored for domain in the acme file.
func LoadCertificate(file, domain string) (tls.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return tls.Certificate{}, err
	}
	return ParseCertificate(data, domain)
}

// ParseCertificate extracts the key pair of domain from acme json data.
// Certificate and key are stored base64 encoded PEM.
func ParseCertificate(data []byte, domain string) (tls.Certificate, error) {
	entry, err := lookup(data, domain)
	if err != nil {
		return tls.Certificate{}, err
	}
	certPEM, err := base64.StdEncoding.DecodeString(entry.Certificate)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("certificate of %s: %w", domain, err)
	}
	keyPEM, err := base64.StdEncoding.DecodeString(entry.Key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("key of %s: %w", domain, err)
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

// entries of all resolvers are searched, the first match is used
func lookup(data []byte, domain string) (*acmeEntry, error) {
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	path, err := jp.ParseString(
		fmt.Sprintf(`$..Certificates[?(@.domain.main == %q)]`, domain))
	if err != nil {
		return nil, err
	}
	res := path.Get(obj)
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotFound, domain)
	}
	entry := acmeEntry{}
	if err := oj.Unmarshal([]byte(oj.JSON(res[0])), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
