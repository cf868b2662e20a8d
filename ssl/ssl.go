package ssl

import (
	"crypto/x509"
	"fmt"
	"os"

	"github.com/golang/glog"
)

// GetRootCAPool returns the system root certificates, or an empty pool when the
// platform exposes none.
func GetRootCAPool() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		glog.Warningf("Could not load the system root CAs, starting from an empty pool: %v", err)
		return x509.NewCertPool()
	}
	return pool
}

// AppendPEMFileToRootCAPool appends the PEM encoded certificates in the file to the pool.
// A nil pool is replaced by a new one.
func AppendPEMFileToRootCAPool(certPool *x509.CertPool, pemFileName string) (*x509.CertPool, error) {
	if certPool == nil {
		certPool = x509.NewCertPool()
	}

	if pemFileName == "" {
		return certPool, nil
	}

	pemCerts, err := os.ReadFile(pemFileName)
	if err != nil {
		return certPool, fmt.Errorf("Failed to read file %s: %v", pemFileName, err)
	}
	if !certPool.AppendCertsFromPEM(pemCerts) {
		return certPool, fmt.Errorf("No certificates found in %s", pemFileName)
	}
	return certPool, nil
}
