package gdelt

import (
	"archive/zip"
	"bytes"
)

func emptyZip() ([]byte, error) {
	var buf bytes.Buffer
	if err := zip.NewWriter(&buf).Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
