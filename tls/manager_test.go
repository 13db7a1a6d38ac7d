package tls

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
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr := NewManager(t.TempDir(), zerolog.Nop())
	if err := os.MkdirAll(mgr.tlsDir, 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return mgr
}

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()
	mgr := NewManager(tmpDir, zerolog.Nop())

	expectedTLSDir := filepath.Join(tmpDir, "tls")
	if mgr.tlsDir != expectedTLSDir {
		t.Errorf("tlsDir = %q, want %q", mgr.tlsDir, expectedTLSDir)
	}
	if mgr.CertFile() != filepath.Join(expectedTLSDir, "server.crt") {
		t.Errorf("CertFile() = %q", mgr.CertFile())
	}
	if mgr.KeyFile() != filepath.Join(expectedTLSDir, "server.key") {
		t.Errorf("KeyFile() = %q", mgr.KeyFile())
	}
}

func TestHostsChanged(t *testing.T) {
	mgr := newTestManager(t)

	if !mgr.hostsChanged([]string{"localhost"}) {
		t.Error("Expected hostsChanged=true when no cached hosts exist")
	}

	if err := mgr.writeCachedHosts([]string{"localhost", "127.0.0.1"}); err != nil {
		t.Fatalf("writeCachedHosts failed: %v", err)
	}

	tests := []struct {
		name  string
		hosts []string
		want  bool
	}{
		{"same hosts", []string{"localhost", "127.0.0.1"}, false},
		{"different order", []string{"127.0.0.1", "localhost"}, false},
		{"extra host", []string{"localhost", "127.0.0.1", "192.168.1.1"}, true},
		{"fewer hosts", []string{"localhost"}, true},
	}
	for _, tt := range tests {
		if got := mgr.hostsChanged(tt.hosts); got != tt.want {
			t.Errorf("%s: hostsChanged = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReadWriteCachedHosts(t *testing.T) {
	mgr := newTestManager(t)
	hosts := []string{"localhost", "127.0.0.1", "192.168.1.100"}

	if err := mgr.writeCachedHosts(hosts); err != nil {
		t.Fatalf("writeCachedHosts failed: %v", err)
	}
	readHosts, err := mgr.readCachedHosts()
	if err != nil {
		t.Fatalf("readCachedHosts failed: %v", err)
	}
	if strings.Join(readHosts, ",") != strings.Join(hosts, ",") {
		t.Errorf("readHosts = %v, want %v", readHosts, hosts)
	}
}

func TestCertsExist(t *testing.T) {
	mgr := newTestManager(t)

	if mgr.certsExist() {
		t.Error("Expected certsExist=false when no certs")
	}

	os.WriteFile(mgr.certFile, []byte("cert"), 0600)
	if mgr.certsExist() {
		t.Error("Expected certsExist=false when only cert exists")
	}

	os.WriteFile(mgr.keyFile, []byte("key"), 0600)
	if !mgr.certsExist() {
		t.Error("Expected certsExist=true when both files exist")
	}
}

func TestEnsureCertificatesReusesExisting(t *testing.T) {
	mgr := newTestManager(t)

	hosts, _ := GetAllHosts()
	os.WriteFile(mgr.certFile, []byte("cert"), 0600)
	os.WriteFile(mgr.keyFile, []byte("key"), 0600)
	if err := mgr.writeCachedHosts(hosts); err != nil {
		t.Fatalf("writeCachedHosts: %v", err)
	}

	cert, key, err := mgr.EnsureCertificates()
	if err != nil {
		t.Fatalf("EnsureCertificates: %v", err)
	}
	if cert != mgr.certFile || key != mgr.keyFile {
		t.Errorf("got %q, %q", cert, key)
	}
}

func TestCAFingerprint(t *testing.T) {
	mgr := newTestManager(t)

	if _, err := mgr.CAFingerprint(); err == nil {
		t.Error("expected error without CA certificate")
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test CA"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	os.MkdirAll(mgr.caDir, 0700)
	os.WriteFile(mgr.caCertFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600)

	fp, err := mgr.CAFingerprint()
	if err != nil {
		t.Fatalf("CAFingerprint: %v", err)
	}
	if len(strings.Split(fp, ":")) != 32 {
		t.Errorf("fingerprint %q should have 32 bytes", fp)
	}

	if _, err := fingerprintPEM([]byte("not pem")); err == nil {
		t.Error("expected error for invalid PEM")
	}
}
