package legal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, path, legalName string) {
	t.Helper()
	raw := "company:\n  legal_name: " + legalName + "\ncookies:\n  - {name: sid, category: necessary}\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
}

func TestProvider_DefaultWhenNoPath(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, err := NewProvider("", discardLogger())
	require.NoError(t, err)
	assert.Equal(t, Default().Company.LegalName, p.Document().Company.LegalName)
	require.NoError(t, p.Reload())
	require.NoError(t, p.Close())
}

func TestProvider_MissingFile(t *testing.T) {
	_, err := NewProvider(filepath.Join(t.TempDir(), "nope.yaml"), discardLogger())
	require.Error(t, err)
}

func TestProvider_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "legal.yaml")
	writeConfig(t, path, "First Ltd")

	reloaded := make(chan *Document, 4)
	p, err := NewProvider(path, discardLogger(), WithReloadHook(func(d *Document) {
		select {
		case reloaded <- d:
		default:
		}
	}))
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()
	assert.Equal(t, "First Ltd", p.Document().Company.LegalName)

	writeConfig(t, path, "Second Ltd")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	assert.Eventually(t, func() bool {
		return p.Document().Company.LegalName == "Second Ltd"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProvider_KeepsLastGoodOnBrokenEdit(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "legal.yaml")
	writeConfig(t, path, "Stable Ltd")

	p, err := NewProvider(path, discardLogger())
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	require.NoError(t, os.WriteFile(path, []byte("company: [broken"), 0o600))
	require.Error(t, p.Reload())
	assert.Equal(t, "Stable Ltd", p.Document().Company.LegalName)
}
