package test

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

// UploadFile builds a multipart form with content as the file named fileName.
//
// The form is returned as a buffer and a map for the HTTP request headers
func UploadFile(t *testing.T, fileName, content string) (*bytes.Buffer, map[string]string) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	w, err := mw.CreateFormFile("file", fileName)
	require.Nil(t, err)

	_, err = w.Write([]byte(content))
	require.Nil(t, err)

	require.Nil(t, mw.Close())

	return body, map[string]string{"Content-Type": mw.FormDataContentType()}
}
