package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	// Create a buffer to write our multipart form
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Create form file
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/jpeg")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	// Parse the multipart form
	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidatePhotoFile_Success_JPG(t *testing.T) {
	content := []byte("fake jpg content")
	fileHeader := createTestFileHeader("delivery.jpg", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.NoError(t, err)
}

func TestValidatePhotoFile_Success_PNG(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("delivery.png", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.NoError(t, err)
}

func TestValidatePhotoFile_FileTooLarge(t *testing.T) {
	// Test with file exceeding size limit (11MB)
	content := []byte("fake jpg content")
	fileHeader := createTestFileHeader("large.jpg", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidatePhotoFile_InvalidFormat_GIF(t *testing.T) {
	content := []byte("fake gif content")
	fileHeader := createTestFileHeader("animation.gif", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
	assert.Contains(t, fileErr.Message, "files are allowed")
}

func TestValidatePhotoFile_InvalidFormat_PDF(t *testing.T) {
	content := []byte("fake pdf content")
	fileHeader := createTestFileHeader("packing-slip.pdf", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
}

func TestValidatePhotoFile_InvalidFormat_NoExtension(t *testing.T) {
	content := []byte("fake content")
	fileHeader := createTestFileHeader("deliveryphoto", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
}

func TestValidatePhotoFile_CaseInsensitive(t *testing.T) {
	content := []byte("fake jpg content")
	fileHeader := createTestFileHeader("delivery.JPG", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.NoError(t, err, "Validation should be case-insensitive")
}

func TestGetPhotoURL(t *testing.T) {
	assert.Equal(t, "/api/v1/uploads/123_photo.jpg", GetPhotoURL("123_photo.jpg"))
	assert.Equal(t, "", GetPhotoURL(""))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}
