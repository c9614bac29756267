package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarDirectory(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "train", "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "train", "images", "a.jpg"), []byte("image-a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "summary.txt"), []byte("6/2/2"), 0644))

	tarPath := filepath.Join(t.TempDir(), "out.tar")
	require.NoError(t, TarDirectory(src, tarPath))

	f, err := os.Open(tarPath)
	require.NoError(t, err)
	defer f.Close()

	contents := map[string]string{}
	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if header.Typeflag == tar.TypeDir {
			contents[header.Name] = ""
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[header.Name] = string(data)
	}

	assert.Equal(t, "image-a", contents["train/images/a.jpg"])
	assert.Equal(t, "6/2/2", contents["summary.txt"])
	assert.Contains(t, contents, "train")
}
