package ssl

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
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
)

func writeMockCertificate(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "mock dsp root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "mock-certs.pem")
	require.NoError(t, os.WriteFile(file, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	return file
}

func TestGetRootCAPool(t *testing.T) {
	assert.NotNil(t, GetRootCAPool())
}

func TestCertsFromFilePoolDontExist(t *testing.T) {
	var certPool *x509.CertPool

	certPool, err := AppendPEMFileToRootCAPool(certPool, writeMockCertificate(t))

	assert.NoError(t, err)
	assert.Len(t, certPool.Subjects(), 1, "We only loaded one certificate from the file")
}

func TestAppendPEMFileToRootCAPoolEmptyFileName(t *testing.T) {
	certPool := x509.NewCertPool()

	result, err := AppendPEMFileToRootCAPool(certPool, "")

	assert.NoError(t, err)
	assert.Same(t, certPool, result)
}

func TestAppendPEMFileToRootCAPoolFail(t *testing.T) {
	var certPool *x509.CertPool

	certPool, err := AppendPEMFileToRootCAPool(certPool, filepath.Join(t.TempDir(), "NO-FILE.pem"))

	assert.Error(t, err, "AppendPEMFileToRootCAPool should throw an error when the file does not exist")
	assert.NotNil(t, certPool)
}

func TestAppendPEMFileToRootCAPoolNoCertificates(t *testing.T) {
	file := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(file, []byte("not a certificate"), 0600))

	_, err := AppendPEMFileToRootCAPool(nil, file)

	assert.Error(t, err)
}
